package domain

import "time"

type UnitSalesStatus string

const (
	UnitSalesStatusAvailable UnitSalesStatus = "available"
	UnitSalesStatusReserved  UnitSalesStatus = "reserved"
	UnitSalesStatusSold      UnitSalesStatus = "sold"
)

// Unit is a sellable property inside a project.
// ReservationHolderID and ReservationExpiresAt are set only while SalesStatus is reserved.
type Unit struct {
	ID                   string          `json:"id"`
	ProjectID            string          `json:"project_id"`
	ConstructionStatus   string          `json:"construction_status"`
	SalesStatus          UnitSalesStatus `json:"sales_status"`
	ListPrice            int64           `json:"list_price"`
	ReservationHolderID  *string         `json:"reservation_holder_id,omitempty"`
	ReservationExpiresAt *time.Time      `json:"reservation_expires_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
