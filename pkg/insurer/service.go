package insurer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	errNameRequired = errors.New("name required")
	errInvalidKind  = errors.New("invalid kind")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Service fronts the registry with validation and defaulting.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func validate(rec *Insurer) error {
	if strings.TrimSpace(rec.Name) == "" {
		return ValidationError{reason: errNameRequired}
	}
	if rec.Kind != "" && !validKind(rec.Kind) {
		return ValidationError{reason: fmt.Errorf("kind '%s': %w", rec.Kind, errInvalidKind)}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, rec *Insurer) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.Kind == "" {
		rec.Kind = KindVU
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id string) (*Insurer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Insurer, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]Insurer, error) {
	if filter.Kind != "" && !validKind(filter.Kind) {
		return nil, ValidationError{reason: fmt.Errorf("kind '%s': %w", filter.Kind, errInvalidKind)}
	}
	return s.repo.Search(ctx, filter)
}

// Update applies a full-record update. The internal code of the existing
// record is always preserved.
func (s *Service) Update(ctx context.Context, rec *Insurer) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.Kind == "" {
		rec.Kind = KindVU
	}
	return s.repo.Update(ctx, rec)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
