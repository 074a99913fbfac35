package invoice

import "github.com/shopspring/decimal"

// Snapshot is the immutable copy of customer, agent and package attributes
// taken when an invoice is created. Rendering reads it and never the live rows.
type Snapshot struct {
	Customer CustomerSnapshot
	Agent    AgentSnapshot
	Package  PackageSnapshot
}

type CustomerSnapshot struct {
	CustomerID *string
	IsSample   bool
	Name       string
	Phone      string
	Email      string
	Address    string
}

type AgentSnapshot struct {
	AgentID *string
	Name    string
}

type PackageSnapshot struct {
	PackageID   string
	Name        string
	Description string
	Price       decimal.Decimal
	PanelQty    int
	PanelRating int
	PackageType string
}

// Apply copies the snapshot onto inv
func (s Snapshot) Apply(inv *Invoice) {
	inv.CustomerID = s.Customer.CustomerID
	inv.IsSample = s.Customer.IsSample
	inv.CustomerName = s.Customer.Name
	inv.CustomerPhone = s.Customer.Phone
	inv.CustomerEmail = s.Customer.Email
	inv.CustomerAddress = s.Customer.Address

	inv.AgentID = s.Agent.AgentID
	inv.AgentName = s.Agent.Name

	inv.PackageID = s.Package.PackageID
	inv.PackageName = s.Package.Name
	inv.PackageDescription = s.Package.Description
	inv.PackagePrice = s.Package.Price
	inv.PanelQty = s.Package.PanelQty
	inv.PanelRating = s.Package.PanelRating
	inv.PackageType = s.Package.PackageType
}
