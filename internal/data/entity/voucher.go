package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Voucher struct {
	BaseSimple
	Code        string          `db:"code"`
	Name        string          `db:"name"`
	OrganizerID uuid.UUID       `db:"organizer_id"`
	Discount    decimal.Decimal `db:"discount"`
	StartsAt    *time.Time      `db:"starts_at"`
	EndsAt      *time.Time      `db:"ends_at"`
}

// ActiveAt reports whether t falls inside the voucher window. A missing
// bound leaves that side open.
func (v *Voucher) ActiveAt(t time.Time) bool {
	if v.StartsAt != nil && t.Before(*v.StartsAt) {
		return false
	}
	if v.EndsAt != nil && t.After(*v.EndsAt) {
		return false
	}
	return true
}
