package document

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TypePDF   = "pdf"
	TypeEmail = "email"
	TypeWord  = "word"
	TypeExcel = "excel"
	TypeImage = "image"
	TypeOther = "other"
)

func validType(t string) bool {
	switch t {
	case TypePDF, TypeEmail, TypeWord, TypeExcel, TypeImage, TypeOther:
		return true
	}
	return false
}

// Document is file metadata attached to a customer and optionally a
// contract. The binary itself lives in external storage; only a reference
// and descriptive fields are kept here.
type Document struct {
	ID          string         `json:"id" gorm:"primaryKey;column:id"`
	CustomerID  string         `json:"kunde_id,omitempty" gorm:"column:customer_id;index"`
	ContractID  string         `json:"vertrag_id,omitempty" gorm:"column:contract_id;index"`
	Title       string         `json:"title" gorm:"column:title"`
	Filename    string         `json:"filename" gorm:"column:filename"`
	Type        string         `json:"document_type" gorm:"column:document_type"`
	FileSize    *int64         `json:"file_size,omitempty" gorm:"column:file_size"`
	MimeType    string         `json:"mime_type,omitempty" gorm:"column:mime_type"`
	Description string         `json:"description,omitempty" gorm:"column:description"`
	Tags        datatypes.JSON `json:"tags,omitempty" gorm:"column:tags"`
	StorageRef  string         `json:"storage_ref,omitempty" gorm:"column:storage_ref"`
	CreatedAt   time.Time      `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"column:updated_at"`
}

func (Document) TableName() string {
	return "documents"
}
