package pos

import (
	"fmt"
	"time"
)

const (
	orderCodePrefix  = "ORD"
	maxCodeAttempts  = 5
	orderCodeDateFmt = "20060102"
)

// codePrefix returns "ORD-YYYYMMDD-" for the shop-local day of t.
func codePrefix(t time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s-%s-", orderCodePrefix, t.In(loc).Format(orderCodeDateFmt))
}

func formatOrderCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}
