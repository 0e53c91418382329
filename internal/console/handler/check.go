package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"go.uber.org/zap"
)

// CheckRunner — контракт пайплайна проверки (internal/engine)
type CheckRunner interface {
	Run(ctx context.Context, assetID, userID string) (*domain.CheckResult, error)
}

// VerdictReader — чтение сохраненного вердикта, nil означает "еще не проверялся"
type VerdictReader interface {
	GetVerdict(ctx context.Context, assetID string) (*domain.ComplianceVerdict, error)
}

type CheckHandler struct {
	checker  CheckRunner
	verdicts VerdictReader
	logger   *zap.Logger
}

func NewCheckHandler(checker CheckRunner, verdicts VerdictReader, logger *zap.Logger) *CheckHandler {
	return &CheckHandler{
		checker:  checker,
		verdicts: verdicts,
		logger:   logger.Named("check-handler"),
	}
}

type checkRequest struct {
	AssetID string `json:"asset_id"`
	UserID  string `json:"user_id,omitempty"`
}

// Check запускает полный пайплайн проверки актива.
// POST /v1/compliance/check
func (h *CheckHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	// Валидация до похода в БД: кривой UUID не должен стоить нам запроса
	if _, err := uuid.Parse(req.AssetID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asset_id", "asset_id must be a valid UUID")
		return
	}

	result, err := h.checker.Run(r.Context(), req.AssetID, req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			writeError(w, http.StatusNotFound, "Asset not found", "")
			return
		}
		h.logger.Error("compliance check failed",
			zap.String("asset_id", req.AssetID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to check compliance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetVerdict возвращает последний сохраненный вердикт без перезапуска пайплайна.
// GET /v1/compliance/{asset_id}
func (h *CheckHandler) GetVerdict(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "asset_id")
	if _, err := uuid.Parse(assetID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid asset_id", "asset_id must be a valid UUID")
		return
	}

	verdict, err := h.verdicts.GetVerdict(r.Context(), assetID)
	if err != nil {
		h.logger.Error("verdict lookup failed",
			zap.String("asset_id", assetID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve verdict", "")
		return
	}
	if verdict == nil {
		writeError(w, http.StatusNotFound, "Verdict not found", "asset has not been checked yet")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}
