package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodWallet   PaymentMethod = "wallet"
)

// Purchase records one checkout. Payment is recorded, never processed here.
type Purchase struct {
	BaseSimple
	EventID        uuid.UUID       `db:"event_id"`
	UserID         uuid.UUID       `db:"user_id"`
	PaymentMethod  PaymentMethod   `db:"payment_method"`
	PaymentDetails *string         `db:"payment_details"`
	TransactionRef string          `db:"transaction_ref"`
	VoucherID      *uuid.UUID      `db:"voucher_id"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	Discount       decimal.Decimal `db:"discount"`
	Total          decimal.Decimal `db:"total"`
}
