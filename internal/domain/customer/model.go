package customer

import (
	"strings"

	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

// Customer represents a customer in the system
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `db:"id" json:"id"`

	// Code is the short human readable identifier printed on quotations
	Code string `db:"code" json:"code"`

	// Name is the name of the customer
	Name string `db:"name" json:"name"`

	// Phone holds digits only so lookups ignore formatting
	Phone string `db:"phone" json:"phone"`

	// Email is the email of the customer
	Email string `db:"email" json:"email"`

	// Address is the free-form installation address of the customer
	Address string `db:"address" json:"address"`

	types.BaseModel
}

// Validate validates the customer
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ierr.NewError("customer name is required").
			WithHint("Please provide a customer name").
			Mark(ierr.ErrValidation)
	}
	if c.Phone != "" && c.Phone != types.NormalizePhone(c.Phone) {
		return ierr.NewError("customer phone must be normalized").
			WithHint("Customer phone may only contain digits").
			WithReportableDetails(map[string]any{
				"phone": c.Phone,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
