package insurer

import (
	"time"
)

// Kind distinguishes a carrier from a pool/underwriting community.
const (
	KindVU   = "VU"
	KindPool = "Pool"
)

func validKind(kind string) bool {
	return kind == KindVU || kind == KindPool
}

// Insurer is one canonical insurance company (VU) the brokerage places
// contracts with. InternalCode is the brokerage's own sequential VU-NNN
// identifier, assigned once at creation and never changed.
type Insurer struct {
	ID                 string    `json:"id" gorm:"primaryKey;column:id"`
	InternalCode       string    `json:"vu_internal_id" gorm:"column:internal_code;uniqueIndex"`
	Name               string    `json:"name" gorm:"column:name"`
	ShortName          string    `json:"kurzbezeichnung,omitempty" gorm:"column:short_name"`
	Kind               string    `json:"status,omitempty" gorm:"column:kind"`
	Street             string    `json:"strasse,omitempty" gorm:"column:street"`
	PostalCode         string    `json:"plz,omitempty" gorm:"column:postal_code"`
	City               string    `json:"ort,omitempty" gorm:"column:city"`
	Phone              string    `json:"telefon,omitempty" gorm:"column:phone"`
	Fax                string    `json:"telefax,omitempty" gorm:"column:fax"`
	EmailCentral       string    `json:"email_zentrale,omitempty" gorm:"column:email_central"`
	EmailClaims        string    `json:"email_schaden,omitempty" gorm:"column:email_claims"`
	Website            string    `json:"internet_adresse,omitempty" gorm:"column:website"`
	ContactPerson      string    `json:"ansprechpartner,omitempty" gorm:"column:contact_person"`
	BrokerNumber       string    `json:"acencia_vermittlernummer,omitempty" gorm:"column:broker_number"`
	ExternalInsurerRef string    `json:"vu_id,omitempty" gorm:"column:external_insurer_ref"`
	Remarks            string    `json:"bemerkung,omitempty" gorm:"column:remarks"`
	CreatedAt          time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Insurer) TableName() string {
	return "vus"
}
