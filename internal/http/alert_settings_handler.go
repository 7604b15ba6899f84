package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/service"

	"go.uber.org/zap"
)

// AlertSettingsHandler 报警规则管理 Handler
type AlertSettingsHandler struct {
	alertService service.AlertSettingService
	logger       *zap.Logger
}

// NewAlertSettingsHandler 创建报警规则 Handler
func NewAlertSettingsHandler(alertService service.AlertSettingService, logger *zap.Logger) *AlertSettingsHandler {
	return &AlertSettingsHandler{
		alertService: alertService,
		logger:       logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *AlertSettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch {
	case r.URL.Path == "/api/v1/alert-settings" && r.Method == http.MethodGet:
		h.ListSettings(w, r)
	case r.URL.Path == "/api/v1/alert-settings" && r.Method == http.MethodPost:
		h.CreateSetting(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/alert-settings/") && r.Method == http.MethodPut:
		h.UpdateSetting(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/alert-settings/") && r.Method == http.MethodDelete:
		h.DeleteSetting(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListSettings 查询用户报警规则
func (h *AlertSettingsHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	settings, err := h.alertService.ListSettings(r.Context(), userID)
	if err != nil {
		h.logger.Error("ListSettings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if settings == nil {
		settings = []*domain.AlertSetting{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alert_settings": settings})
}

// CreateSetting 新建报警规则
func (h *AlertSettingsHandler) CreateSetting(w http.ResponseWriter, r *http.Request) {
	var setting domain.AlertSetting
	if err := readBodyJSON(r, 1<<20, &setting); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.alertService.CreateSetting(r.Context(), &setting)
	if err != nil {
		if strings.Contains(err.Error(), "is required") || strings.Contains(err.Error(), "invalid metric") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("CreateSetting failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateSetting 更新报警规则
func (h *AlertSettingsHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/alert-settings/")
	userID := r.URL.Query().Get("user_id")
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "user_id and setting id are required")
		return
	}

	var setting domain.AlertSetting
	if err := readBodyJSON(r, 1<<20, &setting); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.alertService.UpdateSetting(r.Context(), userID, id, &setting)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert setting not found")
			return
		}
		if strings.Contains(err.Error(), "invalid metric") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("UpdateSetting failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteSetting 删除报警规则
func (h *AlertSettingsHandler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/alert-settings/")
	userID := r.URL.Query().Get("user_id")
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "user_id and setting id are required")
		return
	}

	if err := h.alertService.DeleteSetting(r.Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert setting not found")
			return
		}
		h.logger.Error("DeleteSetting failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
