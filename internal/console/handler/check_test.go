package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"go.uber.org/zap"
)

const validAssetID = "11111111-1111-1111-1111-111111111111"

type fakeChecker struct {
	res *domain.CheckResult
	err error
}

func (f *fakeChecker) Run(ctx context.Context, assetID, userID string) (*domain.CheckResult, error) {
	return f.res, f.err
}

type fakeVerdictReader struct {
	verdict *domain.ComplianceVerdict
	err     error
}

func (f *fakeVerdictReader) GetVerdict(ctx context.Context, assetID string) (*domain.ComplianceVerdict, error) {
	return f.verdict, f.err
}

func newRouter(h *CheckHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/v1/compliance/check", h.Check)
	r.Get("/v1/compliance/{asset_id}", h.GetVerdict)
	return r
}

func TestCheckReturnsResult(t *testing.T) {
	want := &domain.CheckResult{
		AssetID:   validAssetID,
		Symbol:    "CLN",
		Status:    domain.StatusHalal,
		Score:     0.92,
		Reasons:   []string{"clean"},
		CheckedAt: time.Now().UTC(),
	}
	h := NewCheckHandler(&fakeChecker{res: want}, &fakeVerdictReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"asset_id":"` + validAssetID + `"}`)
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want.AssetID, got.AssetID)
	assert.Equal(t, domain.StatusHalal, got.Status)
	assert.InDelta(t, 0.92, got.Score, 1e-9)
}

func TestCheckRejectsInvalidUUID(t *testing.T) {
	h := NewCheckHandler(&fakeChecker{}, &fakeVerdictReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"asset_id":"not-a-uuid"}`)
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid asset_id")
}

func TestCheckRejectsBrokenBody(t *testing.T) {
	h := NewCheckHandler(&fakeChecker{}, &fakeVerdictReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", strings.NewReader(`{`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckMapsNotFoundTo404(t *testing.T) {
	h := NewCheckHandler(&fakeChecker{err: domain.ErrAssetNotFound}, &fakeVerdictReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"asset_id":"` + validAssetID + `"}`)
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", body))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Asset not found")
}

func TestCheckMapsPipelineErrorTo500(t *testing.T) {
	h := NewCheckHandler(&fakeChecker{err: errors.New("verdict upsert: boom")}, &fakeVerdictReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"asset_id":"` + validAssetID + `"}`)
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/compliance/check", body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to check compliance")
}

func TestGetVerdictFound(t *testing.T) {
	verdict := &domain.ComplianceVerdict{
		AssetID: validAssetID,
		Status:  domain.StatusDoubtful,
		Score:   0.55,
	}
	h := NewCheckHandler(&fakeChecker{}, &fakeVerdictReader{verdict: verdict}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/compliance/"+validAssetID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.ComplianceVerdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusDoubtful, got.Status)
}

func TestGetVerdictMissingReturns404(t *testing.T) {
	h := NewCheckHandler(&fakeChecker{}, &fakeVerdictReader{verdict: nil}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/compliance/"+validAssetID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetVerdictRejectsInvalidUUID(t *testing.T) {
	h := NewCheckHandler(&fakeChecker{}, &fakeVerdictReader{}, zap.NewNop())

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/compliance/whatever", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
