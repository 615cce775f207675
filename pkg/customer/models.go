package customer

import (
	"time"

	"gorm.io/datatypes"
)

// Salutations accepted on the wire.
const (
	SalutationHerr  = "Herr"
	SalutationFrau  = "Frau"
	SalutationFirma = "Firma"
)

func validSalutation(s string) bool {
	return s == SalutationHerr || s == SalutationFrau || s == SalutationFirma
}

// Customer is one brokerage client. CustomerNumber is the human-readable
// NN-NNN-NNN number, generated at creation when not supplied. The nested
// detail blocks (bank details, phone numbers, personal data, employer) are
// free-form blobs the back office edits as a whole, stored as JSON.
type Customer struct {
	ID                string            `json:"id" gorm:"primaryKey;column:id"`
	Status            string            `json:"status,omitempty" gorm:"column:status"`
	Salutation        string            `json:"anrede,omitempty" gorm:"column:salutation"`
	Title             string            `json:"titel,omitempty" gorm:"column:title"`
	FirstName         string            `json:"vorname,omitempty" gorm:"column:first_name"`
	LastName          string            `json:"name,omitempty" gorm:"column:last_name"`
	CustomerNumber    string            `json:"kunde_id,omitempty" gorm:"column:customer_number;uniqueIndex"`
	NameSuffix        string            `json:"zusatz,omitempty" gorm:"column:name_suffix"`
	Street            string            `json:"strasse,omitempty" gorm:"column:street"`
	PostalCode        string            `json:"plz,omitempty" gorm:"column:postal_code"`
	City              string            `json:"ort,omitempty" gorm:"column:city"`
	POBoxPostalCode   string            `json:"postfach_plz,omitempty" gorm:"column:pobox_postal_code"`
	POBoxNumber       string            `json:"postfach_nr,omitempty" gorm:"column:pobox_number"`
	CommercialAddress bool              `json:"gewerbliche_adresse" gorm:"column:commercial_address"`
	DocumentFolderNo  string            `json:"dokumentenmappe_nr,omitempty" gorm:"column:document_folder_no"`
	Advisor           string            `json:"betreuer,omitempty" gorm:"column:advisor"`
	AdvisorName       string            `json:"betreuer_name,omitempty" gorm:"column:advisor_name"`
	AdvisorFirm       string            `json:"betreuer_firma,omitempty" gorm:"column:advisor_firm"`
	Remarks           string            `json:"bemerkung,omitempty" gorm:"column:remarks"`
	Selection         string            `json:"selektion,omitempty" gorm:"column:selection"`
	BankDetails       datatypes.JSONMap `json:"bankverbindung,omitempty" gorm:"column:bank_details"`
	PhoneNumbers      datatypes.JSONMap `json:"telefon,omitempty" gorm:"column:phone_numbers"`
	PersonalData      datatypes.JSONMap `json:"persoenliche_daten,omitempty" gorm:"column:personal_data"`
	Employer          datatypes.JSONMap `json:"arbeitgeber,omitempty" gorm:"column:employer"`
	CreatedAt         time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"column:updated_at"`
}

func (Customer) TableName() string {
	return "kunden"
}
