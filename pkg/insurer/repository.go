package insurer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("insurer not found")

const internalCodePrefix = "VU-"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Insurer{})
}

// Create persists a new insurer. When no internal code is supplied the next
// sequential VU-NNN code is derived from the existing records. The unique
// index on internal_code turns a concurrent collision into a storage error
// the caller can retry.
func (r *Repository) Create(ctx context.Context, rec *Insurer) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.InternalCode == "" {
		code, err := r.NextInternalCode(ctx)
		if err != nil {
			return err
		}
		rec.InternalCode = code
	}
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

// NextInternalCode scans all existing codes, takes the highest numeric
// VU-NNN suffix and adds one. Codes that do not parse are skipped; gaps
// left by deletions are never reused.
func (r *Repository) NextInternalCode(ctx context.Context) (string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&Insurer{}).Pluck("internal_code", &codes).Error; err != nil {
		return "", err
	}

	maxID := 0
	for _, code := range codes {
		if !strings.HasPrefix(code, internalCodePrefix) {
			continue
		}
		num, err := strconv.Atoi(code[len(internalCodePrefix):])
		if err != nil {
			continue
		}
		if num > maxID {
			maxID = num
		}
	}

	return fmt.Sprintf("VU-%03d", maxID+1), nil
}

// FindAll returns every insurer in creation order. The matcher's reverse
// scan and the statistics report depend on this order being stable.
func (r *Repository) FindAll(ctx context.Context) ([]Insurer, error) {
	var recs []Insurer
	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&recs)
	return recs, result.Error
}

func (r *Repository) FindByExactName(ctx context.Context, name string) (*Insurer, error) {
	return r.findFirst(ctx, "LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
}

func (r *Repository) FindByExactShortName(ctx context.Context, shortName string) (*Insurer, error) {
	return r.findFirst(ctx, "short_name <> '' AND LOWER(short_name) = ?", strings.ToLower(strings.TrimSpace(shortName)))
}

// FindByNameContains returns every insurer whose name contains the text,
// case-insensitively, in creation order.
func (r *Repository) FindByNameContains(ctx context.Context, text string) ([]Insurer, error) {
	var recs []Insurer
	result := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(text))+"%").
		Order("created_at ASC").
		Find(&recs)
	return recs, result.Error
}

func (r *Repository) findFirst(ctx context.Context, query string, args ...interface{}) (*Insurer, error) {
	var rec Insurer
	err := r.db.WithContext(ctx).Where(query, args...).Order("created_at ASC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Insurer, error) {
	var rec Insurer
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update replaces every mutable field. The id and internal code are kept.
func (r *Repository) Update(ctx context.Context, rec *Insurer) error {
	rec.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&Insurer{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"name":                 rec.Name,
			"short_name":           rec.ShortName,
			"kind":                 rec.Kind,
			"street":               rec.Street,
			"postal_code":          rec.PostalCode,
			"city":                 rec.City,
			"phone":                rec.Phone,
			"fax":                  rec.Fax,
			"email_central":        rec.EmailCentral,
			"email_claims":         rec.EmailClaims,
			"website":              rec.Website,
			"contact_person":       rec.ContactPerson,
			"broker_number":        rec.BrokerNumber,
			"external_insurer_ref": rec.ExternalInsurerRef,
			"remarks":              rec.Remarks,
			"updated_at":           rec.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Insurer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Insurer{}).Count(&count).Error
	return count, err
}

// SearchFilter carries the optional criteria of the insurer search endpoint.
// Text fields match case-insensitively as substrings; Kind matches exactly.
type SearchFilter struct {
	Name      string
	ShortName string
	Kind      string
	City      string
	Phone     string
	Email     string
	Limit     int
}

func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]Insurer, error) {
	query := r.db.WithContext(ctx).Model(&Insurer{})

	if filter.Name != "" {
		query = query.Where("LOWER(name) LIKE ?", contains(filter.Name))
	}
	if filter.ShortName != "" {
		query = query.Where("LOWER(short_name) LIKE ?", contains(filter.ShortName))
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) LIKE ?", contains(filter.City))
	}
	if filter.Phone != "" {
		query = query.Where("LOWER(phone) LIKE ?", contains(filter.Phone))
	}
	if filter.Email != "" {
		pattern := contains(filter.Email)
		query = query.Where("LOWER(email_central) LIKE ? OR LOWER(email_claims) LIKE ?", pattern, pattern)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var recs []Insurer
	result := query.Order("created_at ASC").Limit(limit).Find(&recs)
	return recs, result.Error
}

func contains(text string) string {
	return "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
}
