package handler

import (
	"net/http"
	"strconv"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(s *service.AuditService) *AuditHandler {
	return &AuditHandler{service: s}
}

// GetLogs возвращает список событий аудита с поддержкой фильтрации
// GET /v1/audit?actor=...&resource_id=...&limit=...
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	// Извлекаем фильтры из Query-параметров
	actor := r.URL.Query().Get("actor")
	resourceID := r.URL.Query().Get("resource_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.service.FetchLogs(r.Context(), actor, resourceID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch audit logs", "")
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
