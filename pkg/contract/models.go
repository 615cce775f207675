package contract

import (
	"time"
)

// Contract statuses as used on the wire.
const (
	StatusActive    = "aktiv"
	StatusCancelled = "gekündigt"
	StatusDormant   = "ruhend"
	StatusRevoked   = "storniert"
)

func validStatus(status string) bool {
	switch status {
	case StatusActive, StatusCancelled, StatusDormant, StatusRevoked:
		return true
	}
	return false
}

// Contract is one insurance policy. CompanyName holds the insurer name as
// free text, entered by the broker or extracted from an uploaded document;
// InsurerID/InsurerInternalCode are only ever set by a successful match or
// by explicit manual entry. A nil InsurerInternalCode marks a contract the
// migration job still considers unassigned.
type Contract struct {
	ID                   string     `json:"id" gorm:"primaryKey;column:id"`
	PolicyNumber         string     `json:"vertragsnummer,omitempty" gorm:"column:policy_number"`
	InternalPolicyNumber string     `json:"interne_vertragsnummer,omitempty" gorm:"column:internal_policy_number"`
	CustomerID           string     `json:"kunde_id,omitempty" gorm:"column:customer_id;index"`
	InsurerID            *string    `json:"vu_id,omitempty" gorm:"column:insurer_id"`
	InsurerInternalCode  *string    `json:"vu_internal_id,omitempty" gorm:"column:insurer_internal_code;index"`
	CompanyName          string     `json:"gesellschaft,omitempty" gorm:"column:company_name"`
	VehiclePlate         string     `json:"kfz_kennzeichen,omitempty" gorm:"column:vehicle_plate"`
	ProductLine          string     `json:"produkt_sparte,omitempty" gorm:"column:product_line"`
	Tariff               string     `json:"tarif,omitempty" gorm:"column:tariff"`
	PaymentInterval      string     `json:"zahlungsweise,omitempty" gorm:"column:payment_interval"`
	GrossPremium         *float64   `json:"beitrag_brutto,omitempty" gorm:"column:gross_premium"`
	NetPremium           *float64   `json:"beitrag_netto,omitempty" gorm:"column:net_premium"`
	Status               string     `json:"vertragsstatus,omitempty" gorm:"column:status"`
	Begin                *time.Time `json:"beginn,omitempty" gorm:"column:begin_date"`
	Expiry               *time.Time `json:"ablauf,omitempty" gorm:"column:expiry"`
	CreatedAt            time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Contract) TableName() string {
	return "vertraege"
}
