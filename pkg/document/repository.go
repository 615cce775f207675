package document

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("document not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Document{})
}

func (r *Repository) Create(ctx context.Context, rec *Document) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*Document, error) {
	var rec Document
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListFilter narrows the document listing; zero values mean no constraint.
type ListFilter struct {
	CustomerID string
	ContractID string
	Type       string
	Offset     int
	Limit      int
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Document, error) {
	query := r.db.WithContext(ctx).Model(&Document{})
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ContractID != "" {
		query = query.Where("contract_id = ?", filter.ContractID)
	}
	if filter.Type != "" {
		query = query.Where("document_type = ?", filter.Type)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var recs []Document
	result := query.Order("created_at ASC").Offset(filter.Offset).Limit(limit).Find(&recs)
	return recs, result.Error
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]Document, error) {
	return r.List(ctx, ListFilter{CustomerID: customerID})
}

func (r *Repository) Update(ctx context.Context, id string, fields map[string]interface{}) (*Document, error) {
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&Document{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Document{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats summarises the document store for the dashboard.
type Stats struct {
	TotalDocuments  int64            `json:"total_documents"`
	ByType          map[string]int64 `json:"by_type"`
	RecentDocuments []Document       `json:"recent_documents"`
}

func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Document{}).Count(&total).Error; err != nil {
		return nil, err
	}

	type typeCount struct {
		DocumentType string
		Count        int64
	}
	var counts []typeCount
	err := r.db.WithContext(ctx).Model(&Document{}).
		Select("document_type, COUNT(*) AS count").
		Group("document_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byType := make(map[string]int64, len(counts))
	for _, c := range counts {
		byType[c.DocumentType] = c.Count
	}

	var recent []Document
	err = r.db.WithContext(ctx).Order("created_at DESC").Limit(5).Find(&recent).Error
	if err != nil {
		return nil, err
	}

	return &Stats{TotalDocuments: total, ByType: byType, RecentDocuments: recent}, nil
}
