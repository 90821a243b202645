// Package promptpay builds Thai QR (EMVCo) payloads for PromptPay transfers.
package promptpay

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sigurn/crc16"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	idPayloadFormat = "00"
	idPOIMethod     = "01"
	idMerchantInfo  = "29"
	idCurrency      = "53"
	idAmount        = "54"
	idCountry       = "58"
	idCRC           = "63"

	payloadFormatEMVCo = "01"
	poiMethodStatic    = "11"
	poiMethodDynamic   = "12"

	merchantAID     = "A000000677010111"
	targetAID       = "00"
	targetPhone     = "01"
	targetTaxID     = "02"
	targetEWalletID = "03"

	currencyTHB = "764"
	countryTH   = "TH"
)

var ErrInvalidTarget = errors.New("invalid promptpay id")

var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// Payload returns the QR payload that pays amount baht to target. target is
// a mobile number, a 13-digit national or tax id, or a 15-digit e-wallet id;
// separators are ignored. A zero amount produces a static QR that lets the
// payer type the amount.
func Payload(target string, amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return "", fmt.Errorf("invalid amount %v", amount)
	}

	digits := sanitize(target)
	var sub string
	switch n := len(digits); {
	case n == 15:
		sub = field(targetEWalletID, digits)
	case n == 13:
		sub = field(targetTaxID, digits)
	case n >= 9 && n < 13:
		sub = field(targetPhone, formatPhone(digits))
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	method := poiMethodStatic
	if amount > 0 {
		method = poiMethodDynamic
	}

	var b strings.Builder
	b.WriteString(field(idPayloadFormat, payloadFormatEMVCo))
	b.WriteString(field(idPOIMethod, method))
	b.WriteString(field(idMerchantInfo, field(targetAID, merchantAID)+sub))
	b.WriteString(field(idCountry, countryTH))
	b.WriteString(field(idCurrency, currencyTHB))
	if amount > 0 {
		b.WriteString(field(idAmount, fmt.Sprintf("%.2f", amount)))
	}
	b.WriteString(idCRC + "04")
	b.WriteString(checksum(b.String()))
	return b.String(), nil
}

// PNG renders payload as a QR code image of size×size pixels.
func PNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}

// checksum is the CRC-16/CCITT-FALSE of s as four upper-case hex digits.
func checksum(s string) string {
	return fmt.Sprintf("%04X", crc16.Checksum([]byte(s), crcTable))
}

func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatPhone turns 0812345678 into 0066812345678.
func formatPhone(digits string) string {
	if strings.HasPrefix(digits, "0") {
		digits = "66" + digits[1:]
	}
	padded := strings.Repeat("0", 13) + digits
	return padded[len(padded)-13:]
}
