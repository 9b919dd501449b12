package sales

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Sale represents a credit sale: goods delivered now, paid in installments.
// Customers are not stored; they are derived by grouping sales on BuyerName.
type Sale struct {
	ID           int             `json:"id"`
	BuyerName    string          `json:"buyerName"`
	ItemQuantity int             `json:"itemQuantity"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	SaleDate     civil.Date      `json:"saleDate"`
	Notes        string          `json:"notes,omitempty"`
}

// Payment represents a partial or full settlement against one Sale.
// Its ID is drawn from the same counter as Sale IDs.
type Payment struct {
	ID          int             `json:"id"`
	SaleID      int             `json:"saleId"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	PaymentDate civil.Date      `json:"paymentDate"`
	Notes       string          `json:"notes,omitempty"`
}

// SalePatch holds the fields to replace on an existing sale. Nil fields are
// left untouched.
type SalePatch struct {
	BuyerName    *string
	ItemQuantity *int
	TotalAmount  *decimal.Decimal
	SaleDate     *civil.Date
	Notes        *string
}

// apply merges p onto s and returns the result.
func (p SalePatch) apply(s Sale) Sale {
	if p.BuyerName != nil {
		s.BuyerName = *p.BuyerName
	}
	if p.ItemQuantity != nil {
		s.ItemQuantity = *p.ItemQuantity
	}
	if p.TotalAmount != nil {
		s.TotalAmount = *p.TotalAmount
	}
	if p.SaleDate != nil {
		s.SaleDate = *p.SaleDate
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	return s
}

// SaleInput is a sale as submitted by the operator, before validation.
type SaleInput struct {
	BuyerName    string          `json:"buyerName" validate:"notblank"`
	ItemQuantity int             `json:"itemQuantity" validate:"gt=0"`
	TotalAmount  decimal.Decimal `json:"totalAmount" validate:"gt=0"`
	SaleDate     string          `json:"saleDate" validate:"required,civildate"`
	Notes        string          `json:"notes"`
}

// sale converts a validated input into a record ready to be stored.
func (in SaleInput) sale() Sale {
	date, _ := civil.ParseDate(in.SaleDate)
	return Sale{
		BuyerName:    in.BuyerName,
		ItemQuantity: in.ItemQuantity,
		TotalAmount:  in.TotalAmount,
		SaleDate:     date,
		Notes:        in.Notes,
	}
}

// SaleUpdate is a partial sale edit as submitted by the operator.
type SaleUpdate struct {
	BuyerName    *string          `json:"buyerName"`
	ItemQuantity *int             `json:"itemQuantity"`
	TotalAmount  *decimal.Decimal `json:"totalAmount"`
	SaleDate     *string          `json:"saleDate"`
	Notes        *string          `json:"notes"`
}

// merge overlays u onto the current sale, producing the input that has to
// pass validation before the update is stored.
func (u SaleUpdate) merge(current Sale) SaleInput {
	in := SaleInput{
		BuyerName:    current.BuyerName,
		ItemQuantity: current.ItemQuantity,
		TotalAmount:  current.TotalAmount,
		SaleDate:     current.SaleDate.String(),
		Notes:        current.Notes,
	}
	if u.BuyerName != nil {
		in.BuyerName = *u.BuyerName
	}
	if u.ItemQuantity != nil {
		in.ItemQuantity = *u.ItemQuantity
	}
	if u.TotalAmount != nil {
		in.TotalAmount = *u.TotalAmount
	}
	if u.SaleDate != nil {
		in.SaleDate = *u.SaleDate
	}
	if u.Notes != nil {
		in.Notes = *u.Notes
	}
	return in
}

// patch converts the validated update into a store patch.
func (u SaleUpdate) patch() SalePatch {
	p := SalePatch{
		BuyerName:    u.BuyerName,
		ItemQuantity: u.ItemQuantity,
		TotalAmount:  u.TotalAmount,
		Notes:        u.Notes,
	}
	if u.SaleDate != nil {
		date, _ := civil.ParseDate(*u.SaleDate)
		p.SaleDate = &date
	}
	return p
}

// PaymentInput is a payment as submitted by the operator, before validation.
type PaymentInput struct {
	SaleID      int             `json:"saleId"`
	PaidAmount  decimal.Decimal `json:"paidAmount" validate:"gt=0"`
	PaymentDate string          `json:"paymentDate" validate:"required,civildate"`
	Notes       string          `json:"notes"`
}

func (in PaymentInput) payment() Payment {
	date, _ := civil.ParseDate(in.PaymentDate)
	return Payment{
		SaleID:      in.SaleID,
		PaidAmount:  in.PaidAmount,
		PaymentDate: date,
		Notes:       in.Notes,
	}
}
