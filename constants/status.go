package constants

// InvoiceStatus is the canonical payment status for an invoice.
type InvoiceStatus string

// Stable values (the sink stores these exact strings).
const (
	StatusPaid    InvoiceStatus = "PAID"
	StatusUnpaid  InvoiceStatus = "UNPAID" // default when nothing else matches
	StatusOverdue InvoiceStatus = "OVERDUE"
)

// ContractType is the single-label classification for a contract.
type ContractType string

const (
	ContractLicense    ContractType = "LICENSE"
	ContractConsulting ContractType = "CONSULTING"
	ContractSupply     ContractType = "SUPPLY"
	ContractLease      ContractType = "LEASE"
	ContractEmployment ContractType = "EMPLOYMENT"
	ContractService    ContractType = "SERVICE" // default
)

// ClassificationOrder is the fixed priority used by the keyword classifier.
// Documents matching several categories resolve to the earliest entry.
var ClassificationOrder = []ContractType{
	ContractLicense,
	ContractConsulting,
	ContractSupply,
	ContractLease,
	ContractEmployment,
}

// PartyRole identifies a party's role in a contract.
type PartyRole string

const (
	RoleClient  PartyRole = "CLIENT"
	RoleVendor  PartyRole = "VENDOR"
	RoleUnknown PartyRole = "UNKNOWN"
)
