package customer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("customer not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Customer{})
}

// Create persists a new customer, generating a unique NN-NNN-NNN customer
// number when none is supplied.
func (r *Repository) Create(ctx context.Context, rec *Customer) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CustomerNumber == "" {
		number, err := r.freeCustomerNumber(ctx)
		if err != nil {
			return err
		}
		rec.CustomerNumber = number
	}
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) freeCustomerNumber(ctx context.Context) (string, error) {
	for {
		candidate := fmt.Sprintf("%02d-%03d-%03d",
			rand.Intn(90)+10, rand.Intn(900)+100, rand.Intn(900)+100)

		var count int64
		err := r.db.WithContext(ctx).Model(&Customer{}).
			Where("customer_number = ?", candidate).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}

func (r *Repository) Get(ctx context.Context, id string) (*Customer, error) {
	var rec Customer
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = 60
	}
	var recs []Customer
	result := r.db.WithContext(ctx).Order("created_at ASC").Offset(offset).Limit(limit).Find(&recs)
	return recs, result.Error
}

// SearchFilter carries the optional customer search criteria. Text fields
// match case-insensitively as substrings.
type SearchFilter struct {
	FirstName      string
	LastName       string
	Street         string
	PostalCode     string
	City           string
	CustomerNumber string
	IDs            []string
	Limit          int
}

func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]Customer, error) {
	query := r.db.WithContext(ctx).Model(&Customer{})

	if filter.FirstName != "" {
		query = query.Where("LOWER(first_name) LIKE ?", contains(filter.FirstName))
	}
	if filter.LastName != "" {
		query = query.Where("LOWER(last_name) LIKE ?", contains(filter.LastName))
	}
	if filter.Street != "" {
		query = query.Where("LOWER(street) LIKE ?", contains(filter.Street))
	}
	if filter.PostalCode != "" {
		query = query.Where("LOWER(postal_code) LIKE ?", contains(filter.PostalCode))
	}
	if filter.City != "" {
		query = query.Where("LOWER(city) LIKE ?", contains(filter.City))
	}
	if filter.CustomerNumber != "" {
		query = query.Where("LOWER(customer_number) LIKE ?", contains(filter.CustomerNumber))
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 60
	}

	var recs []Customer
	result := query.Order("created_at ASC").Limit(limit).Find(&recs)
	return recs, result.Error
}

func (r *Repository) Update(ctx context.Context, id string, fields map[string]interface{}) (*Customer, error) {
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func contains(text string) string {
	return "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
}
