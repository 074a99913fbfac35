package agent

import "github.com/solarinvoice/invoicer/internal/types"

// Agent is the sales agent an invoice is issued on behalf of
type Agent struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone"`
	types.BaseModel
}
