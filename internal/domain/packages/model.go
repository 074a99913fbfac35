package packages

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/types"
)

// Package is a priced product offering that invoices are created from.
// It is read at invoice creation time only and copied into the invoice snapshot.
type Package struct {
	ID                 string          `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	Price              decimal.Decimal `db:"price" json:"price"`
	InvoiceDescription string          `db:"invoice_description" json:"invoice_description"`
	PanelQty           int             `db:"panel_qty" json:"panel_qty"`
	PanelRating        int             `db:"panel_rating" json:"panel_rating"`
	PackageType        string          `db:"package_type" json:"package_type"`
	Active             bool            `db:"active" json:"active"`
	types.BaseModel
}

// DisplayDescription is the text printed on the package line item
func (p *Package) DisplayDescription() string {
	if s := strings.TrimSpace(p.InvoiceDescription); s != "" {
		return s
	}
	if s := strings.TrimSpace(p.Name); s != "" {
		return s
	}
	return fmt.Sprintf("Package %s", p.ID)
}
