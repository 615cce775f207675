package insurer

import (
	"context"
	"errors"
	"strings"
)

// Match strategies, in cascade order. The tag is reported alongside every
// match so operators can audit how an assignment came about.
const (
	StrategyExactName      = "exact_name"
	StrategyShortName      = "kurzbezeichnung"
	StrategyPartialName    = "partial_name"
	StrategyReversePartial = "reverse_partial"
	StrategyReverseShort   = "reverse_kurz"
)

// registry is the slice of the repository the matcher needs.
type registry interface {
	FindByExactName(ctx context.Context, name string) (*Insurer, error)
	FindByExactShortName(ctx context.Context, shortName string) (*Insurer, error)
	FindByNameContains(ctx context.Context, text string) ([]Insurer, error)
	FindAll(ctx context.Context) ([]Insurer, error)
}

// Matcher resolves a free-text company name to a canonical insurer using a
// short-circuiting cascade: exact name, exact short name, name-contains-text,
// then a reverse scan testing whether a record's name or short name occurs
// inside the text. The first hit wins; no ranking beyond registry order.
type Matcher struct {
	registry registry
}

func NewMatcher(registry registry) *Matcher {
	return &Matcher{registry: registry}
}

// Match returns the matched insurer and the strategy that found it, or
// (nil, "") when nothing matched. A miss is a normal outcome, not an error.
func (m *Matcher) Match(ctx context.Context, freeText string) (*Insurer, string, error) {
	trimmed := strings.TrimSpace(freeText)
	if trimmed == "" {
		return nil, "", nil
	}

	rec, err := m.registry.FindByExactName(ctx, trimmed)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}
	if rec != nil {
		return rec, StrategyExactName, nil
	}

	rec, err = m.registry.FindByExactShortName(ctx, trimmed)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}
	if rec != nil {
		return rec, StrategyShortName, nil
	}

	partials, err := m.registry.FindByNameContains(ctx, trimmed)
	if err != nil {
		return nil, "", err
	}
	if len(partials) > 0 {
		return &partials[0], StrategyPartialName, nil
	}

	return m.reverseScan(ctx, trimmed)
}

// reverseScan walks every record and tests whether its name, or failing
// that its short name, appears inside the free text. Empty fields never
// match: a blank short name must not make every input a hit.
func (m *Matcher) reverseScan(ctx context.Context, trimmed string) (*Insurer, string, error) {
	all, err := m.registry.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	textLower := strings.ToLower(trimmed)
	for i := range all {
		nameLower := strings.ToLower(all[i].Name)
		shortLower := strings.ToLower(all[i].ShortName)

		if nameLower != "" && strings.Contains(textLower, nameLower) {
			return &all[i], StrategyReversePartial, nil
		}
		if shortLower != "" && strings.Contains(textLower, shortLower) {
			return &all[i], StrategyReverseShort, nil
		}
	}

	return nil, "", nil
}
