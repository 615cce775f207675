package contract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("contract not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Contract{})
}

func (r *Repository) Create(ctx context.Context, rec *Contract) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*Contract, error) {
	var rec Contract
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]Contract, error) {
	if limit <= 0 {
		limit = 100
	}
	var recs []Contract
	result := r.db.WithContext(ctx).Order("created_at ASC").Offset(offset).Limit(limit).Find(&recs)
	return recs, result.Error
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]Contract, error) {
	var recs []Contract
	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&recs)
	return recs, result.Error
}

func (r *Repository) Update(ctx context.Context, id string, fields map[string]interface{}) (*Contract, error) {
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&Contract{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Contract{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CustomerIDsByPlate resolves the customers holding a contract with a
// matching vehicle plate. Used by the customer search.
func (r *Repository) CustomerIDsByPlate(ctx context.Context, plate string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&Contract{}).
		Where("LOWER(vehicle_plate) LIKE ? AND customer_id <> ''", "%"+strings.ToLower(strings.TrimSpace(plate))+"%").
		Distinct().
		Pluck("customer_id", &ids).Error
	return ids, err
}

// FindUnassigned returns every contract whose insurer internal code was
// never populated, in creation order. These are the migration candidates.
func (r *Repository) FindUnassigned(ctx context.Context) ([]Contract, error) {
	var recs []Contract
	result := r.db.WithContext(ctx).
		Where("insurer_internal_code IS NULL").
		Order("created_at ASC").
		Find(&recs)
	return recs, result.Error
}

// AssignInsurer writes the insurer reference onto one specific contract and
// reports whether a row was actually modified.
func (r *Repository) AssignInsurer(ctx context.Context, contractID, insurerID, internalCode string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]interface{}{
			"insurer_id":            insurerID,
			"insurer_internal_code": internalCode,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Contract{}).Count(&count).Error
	return count, err
}

func (r *Repository) CountAssigned(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Contract{}).
		Where("insurer_internal_code IS NOT NULL").
		Count(&count).Error
	return count, err
}

// UnassignedCompanyNames returns the free-text company names of contracts
// without an insurer code, blanks skipped, in creation order.
func (r *Repository) UnassignedCompanyNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&Contract{}).
		Where("insurer_internal_code IS NULL AND company_name <> ''").
		Order("created_at ASC").
		Pluck("company_name", &names).Error
	return names, err
}
