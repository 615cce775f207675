package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/acencia/backoffice/pkg/common/kafka"
	"github.com/acencia/backoffice/pkg/common/logger"
	"github.com/acencia/backoffice/pkg/insurer"
	"github.com/redis/go-redis/v9"
)

const statisticsCacheKey = "vertraege:vu-statistics"

type matcher interface {
	Match(ctx context.Context, freeText string) (*insurer.Insurer, string, error)
}

// MatchInfo tells the caller which insurer an auto-assignment picked and why.
type MatchInfo struct {
	VU        *insurer.Insurer `json:"vu"`
	MatchType string           `json:"match_type"`
}

// MigrationMatch is one line of the migration report.
type MigrationMatch struct {
	ContractID          string `json:"vertrag_id"`
	CompanyName         string `json:"gesellschaft"`
	InsurerName         string `json:"vu_name"`
	InsurerInternalCode string `json:"vu_internal_id"`
	MatchType           string `json:"match_type"`
}

// MigrationReport aggregates one full run over the unassigned contracts.
type MigrationReport struct {
	TotalContracts        int              `json:"total_contracts"`
	Matched               int              `json:"matched"`
	Unmatched             int              `json:"unmatched"`
	Updated               int              `json:"updated"`
	Matches               []MigrationMatch `json:"matches"`
	UnmatchedCompanyNames []string         `json:"unmatched_gesellschaften"`
}

// Statistics reports insurer-assignment coverage across all contracts.
type Statistics struct {
	TotalContracts               int64    `json:"total_contracts"`
	WithInsurer                  int64    `json:"contracts_with_vu"`
	WithoutInsurer               int64    `json:"contracts_without_vu"`
	AssignmentPercentage         float64  `json:"assignment_percentage"`
	UniqueUnassignedCompanyNames []string `json:"unique_unassigned_gesellschaften"`
}

// Coordinator applies the matcher's decisions to contracts, one at a time
// on creation and in bulk for the historical backlog. Producer and cache
// are optional; a nil producer disables events, a nil cache disables the
// statistics cache.
type Coordinator struct {
	repo     *Repository
	matcher  matcher
	producer *kafka.Producer
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewCoordinator(repo *Repository, m matcher, producer *kafka.Producer, cache *redis.Client, cacheTTL time.Duration) *Coordinator {
	return &Coordinator{repo: repo, matcher: m, producer: producer, cache: cache, cacheTTL: cacheTTL}
}

// AutoAssign fills the insurer reference of a draft from its free-text
// company name. An explicit insurer reference always wins and is never
// overwritten; a miss leaves the draft untouched and is not an error.
func (c *Coordinator) AutoAssign(ctx context.Context, draft *Contract) (*MatchInfo, error) {
	if draft.InsurerID != nil || strings.TrimSpace(draft.CompanyName) == "" {
		return nil, nil
	}

	rec, strategy, err := c.matcher.Match(ctx, draft.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("matching company name: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	insurerID := rec.ID
	internalCode := rec.InternalCode
	draft.InsurerID = &insurerID
	draft.InsurerInternalCode = &internalCode

	c.publish(ctx, "vu-assigned", map[string]interface{}{
		"vertrag_id":     draft.ID,
		"gesellschaft":   draft.CompanyName,
		"vu_id":          rec.ID,
		"vu_internal_id": rec.InternalCode,
		"match_type":     strategy,
	})

	return &MatchInfo{VU: rec, MatchType: strategy}, nil
}

// MigrateUnassigned runs the matcher over every contract that never had an
// insurer code, persisting each hit individually. Contracts are handled
// sequentially; the first persistence failure aborts the rest of the batch,
// which is safe to re-run since only still-unassigned contracts qualify.
func (c *Coordinator) MigrateUnassigned(ctx context.Context) (*MigrationReport, error) {
	candidates, err := c.repo.FindUnassigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unassigned contracts: %w", err)
	}

	report := &MigrationReport{
		TotalContracts:        len(candidates),
		Matches:               []MigrationMatch{},
		UnmatchedCompanyNames: []string{},
	}
	seenUnmatched := make(map[string]struct{})

	for i := range candidates {
		contract := &candidates[i]

		if strings.TrimSpace(contract.CompanyName) == "" {
			report.Unmatched++
			continue
		}

		rec, strategy, err := c.matcher.Match(ctx, contract.CompanyName)
		if err != nil {
			return nil, fmt.Errorf("matching contract %s: %w", contract.ID, err)
		}

		if rec == nil {
			report.Unmatched++
			if _, seen := seenUnmatched[contract.CompanyName]; !seen {
				seenUnmatched[contract.CompanyName] = struct{}{}
				report.UnmatchedCompanyNames = append(report.UnmatchedCompanyNames, contract.CompanyName)
			}
			continue
		}

		modified, err := c.repo.AssignInsurer(ctx, contract.ID, rec.ID, rec.InternalCode)
		if err != nil {
			return nil, fmt.Errorf("assigning insurer to contract %s: %w", contract.ID, err)
		}
		if modified {
			report.Matched++
			report.Updated++
			report.Matches = append(report.Matches, MigrationMatch{
				ContractID:          contract.ID,
				CompanyName:         contract.CompanyName,
				InsurerName:         rec.Name,
				InsurerInternalCode: rec.InternalCode,
				MatchType:           strategy,
			})
		}
	}

	c.invalidateStatistics(ctx)
	c.publish(ctx, "vu-migration-completed", map[string]interface{}{
		"total_contracts": report.TotalContracts,
		"matched":         report.Matched,
		"unmatched":       report.Unmatched,
		"updated":         report.Updated,
	})

	return report, nil
}

// Statistics computes assignment coverage, served from the cache when a
// fresh copy exists. Cache failures fall through to a live computation.
func (c *Coordinator) Statistics(ctx context.Context) (*Statistics, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, statisticsCacheKey).Bytes(); err == nil {
			var stats Statistics
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	total, err := c.repo.CountTotal(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := c.repo.CountAssigned(ctx)
	if err != nil {
		return nil, err
	}
	names, err := c.repo.UnassignedCompanyNames(ctx)
	if err != nil {
		return nil, err
	}

	unique := []string{}
	seen := make(map[string]struct{})
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}

	percentage := 0.0
	if total > 0 {
		percentage = math.Round(float64(assigned)/float64(total)*100*100) / 100
	}

	stats := &Statistics{
		TotalContracts:               total,
		WithInsurer:                  assigned,
		WithoutInsurer:               total - assigned,
		AssignmentPercentage:         percentage,
		UniqueUnassignedCompanyNames: unique,
	}

	if c.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := c.cache.Set(ctx, statisticsCacheKey, data, c.cacheTTL).Err(); err != nil {
				logger.Log.WithError(err).Debug("failed to cache vu statistics")
			}
		}
	}

	return stats, nil
}

func (c *Coordinator) invalidateStatistics(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Del(ctx, statisticsCacheKey).Err(); err != nil {
		logger.Log.WithError(err).Debug("failed to invalidate vu statistics cache")
	}
}

func (c *Coordinator) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.producer == nil {
		return
	}
	if err := c.producer.PublishEvent(ctx, eventType, "backoffice", data); err != nil {
		logger.Log.WithError(err).Warn("failed to publish assignment event")
	}
}
