package contract

import (
	"context"
	"testing"

	"github.com/acencia/backoffice/pkg/insurer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHarness wires a real matcher over a shared in-memory database, with
// events and caching disabled.
type testHarness struct {
	contracts   *Repository
	insurers    *insurer.Repository
	coordinator *Coordinator
}

func setupHarness(t *testing.T) *testHarness {
	db := setupTestDB(t)

	contracts := NewRepository(db)
	require.NoError(t, contracts.AutoMigrate())

	insurers := insurer.NewRepository(db)
	require.NoError(t, insurers.AutoMigrate())

	matcher := insurer.NewMatcher(insurers)
	return &testHarness{
		contracts:   contracts,
		insurers:    insurers,
		coordinator: NewCoordinator(contracts, matcher, nil, nil, 0),
	}
}

func (h *testHarness) seedInsurer(t *testing.T, rec insurer.Insurer) insurer.Insurer {
	require.NoError(t, h.insurers.Create(context.Background(), &rec))
	return rec
}

func TestAutoAssignSetsInsurerReference(t *testing.T) {
	h := setupHarness(t)
	allianz := h.seedInsurer(t, insurer.Insurer{
		Name: "Allianz Versicherung AG", ShortName: "Allianz", InternalCode: "VU-001",
	})

	draft := Contract{CompanyName: "Allianz"}
	info, err := h.coordinator.AutoAssign(context.Background(), &draft)
	require.NoError(t, err)

	require.NotNil(t, info)
	assert.Equal(t, insurer.StrategyShortName, info.MatchType)
	require.NotNil(t, draft.InsurerID)
	require.NotNil(t, draft.InsurerInternalCode)
	assert.Equal(t, allianz.ID, *draft.InsurerID)
	assert.Equal(t, "VU-001", *draft.InsurerInternalCode)
}

func TestAutoAssignNeverOverwritesExplicitInsurer(t *testing.T) {
	h := setupHarness(t)
	h.seedInsurer(t, insurer.Insurer{
		Name: "Allianz Versicherung AG", ShortName: "Allianz", InternalCode: "VU-001",
	})

	draft := Contract{
		CompanyName:         "Allianz",
		InsurerID:           strPtr("manually-chosen"),
		InsurerInternalCode: strPtr("VU-099"),
	}
	info, err := h.coordinator.AutoAssign(context.Background(), &draft)
	require.NoError(t, err)

	assert.Nil(t, info)
	assert.Equal(t, "manually-chosen", *draft.InsurerID)
	assert.Equal(t, "VU-099", *draft.InsurerInternalCode)
}

func TestAutoAssignNoMatchLeavesDraftUntouched(t *testing.T) {
	h := setupHarness(t)
	h.seedInsurer(t, insurer.Insurer{
		Name: "Allianz Versicherung AG", ShortName: "Allianz", InternalCode: "VU-001",
	})

	draft := Contract{CompanyName: "Completely Unknown Insurance XYZ Corp"}
	info, err := h.coordinator.AutoAssign(context.Background(), &draft)
	require.NoError(t, err)

	assert.Nil(t, info)
	assert.Nil(t, draft.InsurerID)
	assert.Nil(t, draft.InsurerInternalCode)

	// the contract is still created without an insurer reference
	require.NoError(t, h.contracts.Create(context.Background(), &draft))
	stored, err := h.contracts.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InsurerInternalCode)
}

func TestAutoAssignEmptyCompanyName(t *testing.T) {
	h := setupHarness(t)

	draft := Contract{CompanyName: "   "}
	info, err := h.coordinator.AutoAssign(context.Background(), &draft)
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Nil(t, draft.InsurerID)
}

func TestMigrateUnassigned(t *testing.T) {
	h := setupHarness(t)
	allianz := h.seedInsurer(t, insurer.Insurer{
		Name: "Allianz Versicherung AG", ShortName: "Allianz", InternalCode: "VU-001",
	})

	matchable := seedContract(t, h.contracts, Contract{CompanyName: "Allianz"})
	seedContract(t, h.contracts, Contract{}) // no company name

	report, err := h.coordinator.MigrateUnassigned(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalContracts)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Unmatched)
	assert.Empty(t, report.UnmatchedCompanyNames, "absent names must not appear in the report")

	require.Len(t, report.Matches, 1)
	assert.Equal(t, matchable.ID, report.Matches[0].ContractID)
	assert.Equal(t, "Allianz", report.Matches[0].CompanyName)
	assert.Equal(t, allianz.Name, report.Matches[0].InsurerName)
	assert.Equal(t, "VU-001", report.Matches[0].InsurerInternalCode)
	assert.Equal(t, insurer.StrategyShortName, report.Matches[0].MatchType)

	stored, err := h.contracts.Get(context.Background(), matchable.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InsurerInternalCode)
	assert.Equal(t, "VU-001", *stored.InsurerInternalCode)
}

func TestMigrateDeduplicatesUnmatchedNames(t *testing.T) {
	h := setupHarness(t)

	seedContract(t, h.contracts, Contract{CompanyName: "Mystery Mutual"})
	seedContract(t, h.contracts, Contract{CompanyName: "Mystery Mutual"})
	seedContract(t, h.contracts, Contract{CompanyName: "Another Unknown"})

	report, err := h.coordinator.MigrateUnassigned(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalContracts)
	assert.Equal(t, 3, report.Unmatched)
	assert.Equal(t, []string{"Mystery Mutual", "Another Unknown"}, report.UnmatchedCompanyNames)
}

func TestMigrateIsIdempotent(t *testing.T) {
	h := setupHarness(t)
	h.seedInsurer(t, insurer.Insurer{
		Name: "Allianz Versicherung AG", ShortName: "Allianz", InternalCode: "VU-001",
	})
	seedContract(t, h.contracts, Contract{CompanyName: "Allianz"})
	seedContract(t, h.contracts, Contract{CompanyName: "Mystery Mutual"})

	first, err := h.coordinator.MigrateUnassigned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Matched)
	assert.Equal(t, 1, first.Updated)

	second, err := h.coordinator.MigrateUnassigned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Matched)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.TotalContracts, "only the still-unmatched contract remains a candidate")
}

func TestStatisticsEmpty(t *testing.T) {
	h := setupHarness(t)

	stats, err := h.coordinator.Statistics(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 0, stats.TotalContracts)
	assert.EqualValues(t, 0, stats.WithInsurer)
	assert.EqualValues(t, 0, stats.WithoutInsurer)
	assert.Zero(t, stats.AssignmentPercentage)
	assert.Empty(t, stats.UniqueUnassignedCompanyNames)
}

func TestStatisticsCoverage(t *testing.T) {
	h := setupHarness(t)

	seedContract(t, h.contracts, Contract{CompanyName: "Allianz", InsurerID: strPtr("i1"), InsurerInternalCode: strPtr("VU-001")})
	seedContract(t, h.contracts, Contract{CompanyName: "Mystery Mutual"})
	seedContract(t, h.contracts, Contract{CompanyName: "Mystery Mutual"})
	seedContract(t, h.contracts, Contract{CompanyName: ""})

	stats, err := h.coordinator.Statistics(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalContracts)
	assert.EqualValues(t, 1, stats.WithInsurer)
	assert.EqualValues(t, 3, stats.WithoutInsurer)
	assert.Equal(t, 25.0, stats.AssignmentPercentage)
	assert.Equal(t, []string{"Mystery Mutual"}, stats.UniqueUnassignedCompanyNames)
}

func TestStatisticsPercentageRounding(t *testing.T) {
	h := setupHarness(t)

	seedContract(t, h.contracts, Contract{InsurerID: strPtr("i1"), InsurerInternalCode: strPtr("VU-001")})
	seedContract(t, h.contracts, Contract{InsurerID: strPtr("i1"), InsurerInternalCode: strPtr("VU-001")})
	seedContract(t, h.contracts, Contract{CompanyName: "X"})

	stats, err := h.coordinator.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 66.67, stats.AssignmentPercentage)
}
