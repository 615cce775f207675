package contract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")
	return db
}

func setupContractRepo(t *testing.T) *Repository {
	repo := NewRepository(setupTestDB(t))
	require.NoError(t, repo.AutoMigrate(), "failed to migrate test database")
	return repo
}

func seedContract(t *testing.T, repo *Repository, rec Contract) Contract {
	require.NoError(t, repo.Create(context.Background(), &rec))
	time.Sleep(time.Millisecond)
	return rec
}

func strPtr(s string) *string { return &s }

func TestFindUnassignedExcludesAssigned(t *testing.T) {
	repo := setupContractRepo(t)
	unassigned := seedContract(t, repo, Contract{CompanyName: "Allianz"})
	seedContract(t, repo, Contract{
		CompanyName:         "Dialog",
		InsurerID:           strPtr("some-insurer"),
		InsurerInternalCode: strPtr("VU-003"),
	})

	recs, err := repo.FindUnassigned(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, unassigned.ID, recs[0].ID)
}

func TestAssignInsurerReportsModification(t *testing.T) {
	repo := setupContractRepo(t)
	rec := seedContract(t, repo, Contract{CompanyName: "Allianz"})

	modified, err := repo.AssignInsurer(context.Background(), rec.ID, "insurer-1", "VU-001")
	require.NoError(t, err)
	assert.True(t, modified)

	stored, err := repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InsurerID)
	require.NotNil(t, stored.InsurerInternalCode)
	assert.Equal(t, "insurer-1", *stored.InsurerID)
	assert.Equal(t, "VU-001", *stored.InsurerInternalCode)

	modified, err = repo.AssignInsurer(context.Background(), "no-such-contract", "insurer-1", "VU-001")
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestCountsAndUnassignedNames(t *testing.T) {
	repo := setupContractRepo(t)
	seedContract(t, repo, Contract{CompanyName: "Allianz", InsurerID: strPtr("i1"), InsurerInternalCode: strPtr("VU-001")})
	seedContract(t, repo, Contract{CompanyName: "Unknown Insurer"})
	seedContract(t, repo, Contract{CompanyName: ""})

	total, err := repo.CountTotal(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	assigned, err := repo.CountAssigned(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, assigned)

	names, err := repo.UnassignedCompanyNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Unknown Insurer"}, names)
}

func TestCustomerIDsByPlate(t *testing.T) {
	repo := setupContractRepo(t)
	seedContract(t, repo, Contract{CustomerID: "k1", VehiclePlate: "HH-AB 123"})
	seedContract(t, repo, Contract{CustomerID: "k1", VehiclePlate: "HH-AB 124"})
	seedContract(t, repo, Contract{CustomerID: "k2", VehiclePlate: "M-XY 99"})
	seedContract(t, repo, Contract{VehiclePlate: "HH-ZZ 1"})

	ids, err := repo.CustomerIDsByPlate(context.Background(), "hh-ab")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k1"}, ids)
}

func TestUpdatePartialFields(t *testing.T) {
	repo := setupContractRepo(t)
	rec := seedContract(t, repo, Contract{CompanyName: "Allianz", Tariff: "Basis"})

	updated, err := repo.Update(context.Background(), rec.ID, map[string]interface{}{
		"tariff": "Komfort",
	})
	require.NoError(t, err)
	assert.Equal(t, "Komfort", updated.Tariff)
	assert.Equal(t, "Allianz", updated.CompanyName, "untouched fields survive")

	_, err = repo.Update(context.Background(), "missing", map[string]interface{}{"tariff": "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}
