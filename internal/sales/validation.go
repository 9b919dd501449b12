package sales

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError carries every business rule violated by a submission, in
// field order. A submission that produces one is never written.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// messages maps "<StructField>.<tag>" to the text shown to the operator.
var messages = map[string]string{
	"BuyerName.notblank":    "buyer name is required",
	"ItemQuantity.gt":       "item quantity must be greater than zero",
	"TotalAmount.gt":        "total amount must be greater than zero",
	"SaleDate.required":     "sale date is required",
	"SaleDate.civildate":    "sale date must be a valid date (YYYY-MM-DD)",
	"PaidAmount.gt":         "paid amount must be greater than zero",
	"PaymentDate.required":  "payment date is required",
	"PaymentDate.civildate": "payment date must be a valid date (YYYY-MM-DD)",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("civildate", civilDate); err != nil {
		panic(err)
	}
	return v
}

// decimalValue lets numeric tags such as gt=0 run against decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func civilDate(fl validator.FieldLevel) bool {
	_, err := civil.ParseDate(fl.Field().String())
	return err == nil
}

// ValidateSale returns the messages for every rule the sale input breaks.
// An empty result means the input can be stored.
func ValidateSale(in SaleInput) []string {
	return collect(validate.Struct(in))
}

// ValidatePayment checks the payment input against the field rules and
// against the outstanding balance of the sale it settles.
func ValidatePayment(in PaymentInput, outstanding decimal.Decimal) []string {
	msgs := collect(validate.Struct(in))
	if in.PaidAmount.GreaterThan(outstanding) {
		msgs = append(msgs, fmt.Sprintf("paid amount cannot exceed the outstanding balance (max %s)", outstanding.StringFixed(2)))
	}
	return msgs
}

func collect(err error) []string {
	msgs := []string{}
	if err == nil {
		return msgs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return append(msgs, err.Error())
	}
	for _, fe := range fieldErrs {
		if msg, ok := messages[fe.StructField()+"."+fe.Tag()]; ok {
			msgs = append(msgs, msg)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
	}
	return msgs
}
