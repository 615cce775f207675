package customer

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestRepo(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	repo := NewRepository(db)
	require.NoError(t, repo.AutoMigrate(), "failed to migrate test database")
	return repo
}

func TestCreateGeneratesCustomerNumber(t *testing.T) {
	repo := setupTestRepo(t)

	rec := Customer{FirstName: "Max", LastName: "Mustermann"}
	require.NoError(t, repo.Create(context.Background(), &rec))

	assert.Regexp(t, regexp.MustCompile(`^\d{2}-\d{3}-\d{3}$`), rec.CustomerNumber)
	assert.NotEmpty(t, rec.ID)
}

func TestCreateKeepsSuppliedCustomerNumber(t *testing.T) {
	repo := setupTestRepo(t)

	rec := Customer{LastName: "Schmidt", CustomerNumber: "12-345-678"}
	require.NoError(t, repo.Create(context.Background(), &rec))
	assert.Equal(t, "12-345-678", rec.CustomerNumber)
}

func TestCreateStoresDetailBlobs(t *testing.T) {
	repo := setupTestRepo(t)

	rec := Customer{
		LastName: "Meier",
		BankDetails: datatypes.JSONMap{
			"iban": "DE02120300000000202051",
			"bank": "Testbank",
		},
	}
	require.NoError(t, repo.Create(context.Background(), &rec))

	stored, err := repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "DE02120300000000202051", stored.BankDetails["iban"])
}

func TestSearchByCityAndName(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Create(context.Background(), &Customer{LastName: "Mustermann", City: "Hamburg"}))
	require.NoError(t, repo.Create(context.Background(), &Customer{LastName: "Musterfrau", City: "München"}))

	recs, err := repo.Search(context.Background(), SearchFilter{City: "hamburg"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Mustermann", recs[0].LastName)

	recs, err = repo.Search(context.Background(), SearchFilter{LastName: "muster"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestSearchByIDs(t *testing.T) {
	repo := setupTestRepo(t)
	a := Customer{LastName: "A"}
	b := Customer{LastName: "B"}
	require.NoError(t, repo.Create(context.Background(), &a))
	require.NoError(t, repo.Create(context.Background(), &b))

	recs, err := repo.Search(context.Background(), SearchFilter{IDs: []string{a.ID}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "A", recs[0].LastName)
}

func TestDeleteMissingCustomer(t *testing.T) {
	repo := setupTestRepo(t)
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), ErrNotFound)
}
