package insurer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acencia/backoffice/pkg/common/logger"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*mux.Router, *Repository) {
	logger.Init()
	repo := setupTestRepo(t)

	router := mux.NewRouter()
	NewHTTPHandler(NewService(repo), NewMatcher(repo), 1<<20).Register(router)
	return router, repo
}

func TestCreateInsurerEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	body := bytes.NewBufferString(`{"name":"Allianz Versicherung AG","kurzbezeichnung":"Allianz"}`)
	req := httptest.NewRequest(http.MethodPost, "/vus", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var rec Insurer
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "VU-001", rec.InternalCode)
	assert.Equal(t, KindVU, rec.Kind)
	assert.NotEmpty(t, rec.ID)
}

func TestCreateInsurerEndpointRejectsMissingName(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/vus", bytes.NewBufferString(`{"kurzbezeichnung":"X"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMatchEndpointFound(t *testing.T) {
	router, repo := setupTestRouter(t)
	seedRegistry(t, repo)

	body := bytes.NewBufferString(`{"gesellschaft":"Alte Leipziger Versicherungsgruppe"}`)
	req := httptest.NewRequest(http.MethodPost, "/vus/match-gesellschaft", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp matchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Match)
	require.NotNil(t, resp.VU)
	assert.Equal(t, "Alte Leipziger Lebensversicherung AG", resp.VU.Name)
	assert.Equal(t, StrategyReverseShort, resp.MatchType)
	assert.Contains(t, resp.Message, "VU gefunden")
}

func TestMatchEndpointNotFound(t *testing.T) {
	router, repo := setupTestRouter(t)
	seedRegistry(t, repo)

	body := bytes.NewBufferString(`{"gesellschaft":"ALS Versicherungsgruppe"}`)
	req := httptest.NewRequest(http.MethodPost, "/vus/match-gesellschaft", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp matchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Match)
	assert.Nil(t, resp.VU)
	assert.Empty(t, resp.MatchType)
	assert.Contains(t, resp.Message, "Keine VU gefunden")
}

func TestGetInsurerEndpointNotFound(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/vus/does-not-exist", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
