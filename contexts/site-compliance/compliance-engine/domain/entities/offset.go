package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "pending"
	LedgerStatusActive  LedgerStatus = "active"
	LedgerStatusExpired LedgerStatus = "expired"
)

var hundred = decimal.NewFromInt(100)

// Offset is a direct-service offset: a once-per-year percentage reduction of a
// municipality's base requirement.
type Offset struct {
	OffsetID           string
	MunicipalityID     string
	Percentage         decimal.Decimal
	AnnualPickupVolume int64
	EffectiveDate      time.Time
	SupersededBy       string
	SupersededAt       *time.Time
	CreatedAt          time.Time
}

func (o Offset) EffectiveYear() int {
	return o.EffectiveDate.UTC().Year()
}

// ExpiresAt is the first calendar-year boundary after the effective date.
func (o Offset) ExpiresAt() time.Time {
	return time.Date(o.EffectiveYear()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (o Offset) Superseded() bool {
	return o.SupersededBy != ""
}

// StatusAt derives the offset status from the clock; it is never stored.
func (o Offset) StatusAt(t time.Time) LedgerStatus {
	t = t.UTC()
	if o.SupersededAt != nil && !t.Before(*o.SupersededAt) {
		return LedgerStatusExpired
	}
	if t.Before(o.EffectiveDate.UTC()) {
		return LedgerStatusPending
	}
	if !t.Before(o.ExpiresAt()) {
		return LedgerStatusExpired
	}
	return LedgerStatusActive
}

func ValidPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// SitesReduced is floor(base * percentage / 100). It never exceeds base for a
// valid percentage.
func SitesReduced(base int, percentage decimal.Decimal) int {
	if base <= 0 || !ValidPercentage(percentage) {
		return 0
	}
	return int(decimal.NewFromInt(int64(base)).Mul(percentage).Div(hundred).Floor().IntPart())
}
