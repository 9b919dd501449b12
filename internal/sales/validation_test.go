package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSale(t *testing.T) {
	valid := SaleInput{BuyerName: "Ana", ItemQuantity: 10, TotalAmount: dec("50.00"), SaleDate: "2024-01-01"}

	tests := []struct {
		name   string
		mutate func(*SaleInput)
		want   []string
	}{
		{name: "valid", mutate: func(*SaleInput) {}, want: []string{}},
		{
			name:   "blank buyer",
			mutate: func(in *SaleInput) { in.BuyerName = "   " },
			want:   []string{"buyer name is required"},
		},
		{
			name:   "zero quantity",
			mutate: func(in *SaleInput) { in.ItemQuantity = 0 },
			want:   []string{"item quantity must be greater than zero"},
		},
		{
			name:   "negative total",
			mutate: func(in *SaleInput) { in.TotalAmount = dec("-1") },
			want:   []string{"total amount must be greater than zero"},
		},
		{
			name:   "missing date",
			mutate: func(in *SaleInput) { in.SaleDate = "" },
			want:   []string{"sale date is required"},
		},
		{
			name:   "unparseable date",
			mutate: func(in *SaleInput) { in.SaleDate = "01/02/2024" },
			want:   []string{"sale date must be a valid date (YYYY-MM-DD)"},
		},
		{
			name:   "everything wrong, in field order",
			mutate: func(in *SaleInput) { *in = SaleInput{} },
			want: []string{
				"buyer name is required",
				"item quantity must be greater than zero",
				"total amount must be greater than zero",
				"sale date is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Equal(t, tt.want, ValidateSale(in))
		})
	}
}

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name        string
		in          PaymentInput
		outstanding string
		want        []string
	}{
		{
			name:        "valid",
			in:          PaymentInput{SaleID: 1, PaidAmount: dec("20"), PaymentDate: "2024-01-05"},
			outstanding: "50",
			want:        []string{},
		},
		{
			name:        "pays exactly the outstanding",
			in:          PaymentInput{SaleID: 1, PaidAmount: dec("30"), PaymentDate: "2024-01-05"},
			outstanding: "30",
			want:        []string{},
		},
		{
			name:        "exceeds outstanding",
			in:          PaymentInput{SaleID: 1, PaidAmount: dec("31.00"), PaymentDate: "2024-01-05"},
			outstanding: "30",
			want:        []string{"paid amount cannot exceed the outstanding balance (max 30.00)"},
		},
		{
			name:        "zero amount and no date",
			in:          PaymentInput{SaleID: 1},
			outstanding: "30",
			want:        []string{"paid amount must be greater than zero", "payment date is required"},
		},
		{
			name:        "settled sale",
			in:          PaymentInput{SaleID: 1, PaidAmount: dec("1"), PaymentDate: "2024-13-01"},
			outstanding: "0",
			want: []string{
				"payment date must be a valid date (YYYY-MM-DD)",
				"paid amount cannot exceed the outstanding balance (max 0.00)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePayment(tt.in, dec(tt.outstanding)))
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Messages: []string{"buyer name is required", "sale date is required"}}
	assert.Equal(t, "validation failed: buyer name is required; sale date is required", err.Error())
}
