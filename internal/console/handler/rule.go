package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/console/service"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
)

type RuleHandler struct {
	service *service.RuleService
}

func NewRuleHandler(s *service.RuleService) *RuleHandler {
	return &RuleHandler{service: s}
}

// Get возвращает детали конкретного правила по его ID.
// GET /v1/rules/{id}
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	// Извлекаем ID из параметров пути chi
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Rule ID is required", "")
		return
	}

	rule, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve rule", err.Error())
		return
	}

	// Если правило не найдено (nil), возвращаем 404
	if rule == nil {
		writeError(w, http.StatusNotFound, "Rule not found", "")
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

// List возвращает все правила для админки (включая выключенные)
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch rules", "")
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// Create создает новое правило и рассылает сигнал обновления кэшей
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rule domain.ComplianceRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	// Категория — закрытый список, все остальное отбрасываем на входе
	if _, ok := domain.ParseRuleCategory(rule.Category); !ok {
		writeError(w, http.StatusBadRequest, "Invalid rule_category",
			"allowed: riba_prohibition, gharar_prohibition, haram_sectors")
		return
	}

	if err := h.service.Create(r.Context(), &rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create rule", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// Update обновляет существующее правило (критерии, активность)
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var rule domain.ComplianceRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	rule.ID = id

	if _, ok := domain.ParseRuleCategory(rule.Category); !ok {
		writeError(w, http.StatusBadRequest, "Invalid rule_category",
			"allowed: riba_prohibition, gharar_prohibition, haram_sectors")
		return
	}

	if err := h.service.Update(r.Context(), &rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update rule", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete удаляет правило и инициирует инвалидацию кэша
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete rule", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
