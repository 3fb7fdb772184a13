package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the catalog service. The gateway only ever reads the
// fields it needs for pricing.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
