package promptpay

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestChecksum(t *testing.T) {
	if got := checksum("123456789"); got != "29B1" {
		t.Errorf("checksum check value = %s, want 29B1", got)
	}
}

func TestPayload(t *testing.T) {
	tests := []struct {
		name   string
		target string
		amount float64
		want   string
	}{
		{
			name:   "zero phone without amount",
			target: "000-000-0000",
			want:   "00020101021129370016A000000677010111011300660000000005802TH530376463048956",
		},
		{
			name:   "zero phone with amount",
			target: "000-000-0000",
			amount: 4.22,
			want:   "00020101021229370016A000000677010111011300660000000005802TH530376454044.226304E469",
		},
		{
			name:   "phone without amount",
			target: "0812345678",
			want:   "00020101021129370016A000000677010111011300668123456785802TH530376463045D82",
		},
		{
			name:   "phone with separators and amount",
			target: "081-234-5678",
			amount: 50,
			want:   "00020101021229370016A000000677010111011300668123456785802TH5303764540550.0063049948",
		},
		{
			name:   "tax id",
			target: "1234567890123",
			amount: 120.5,
			want:   "00020101021229370016A000000677010111021312345678901235802TH53037645406120.5063043E0A",
		},
		{
			name:   "e-wallet",
			target: "004999000288505",
			want:   "00020101021129390016A00000067701011103150049990002885055802TH530376463041521",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payload(tt.target, tt.amount)
			if err != nil {
				t.Fatalf("Payload failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Payload(%q, %v)\n got %s\nwant %s", tt.target, tt.amount, got, tt.want)
			}
		})
	}
}

func TestPayloadRejectsBadTarget(t *testing.T) {
	for _, target := range []string{"12-34", "12345678901234", "1234567890123456", "12345678901234567"} {
		if _, err := Payload(target, 10); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("%q: expected ErrInvalidTarget, got %v", target, err)
		}
	}
}

func TestPayloadRejectsBadAmount(t *testing.T) {
	for _, amount := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Payload("0812345678", amount); err == nil {
			t.Errorf("amount %v should fail", amount)
		}
	}
}

func TestPNG(t *testing.T) {
	payload, _ := Payload("0812345678", 45)
	img, err := PNG(payload, 128)
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}
