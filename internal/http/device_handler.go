package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/service"

	"go.uber.org/zap"
)

// DeviceHandler 设备管理 Handler
type DeviceHandler struct {
	deviceService service.DeviceService
	logger        *zap.Logger
}

// NewDeviceHandler 创建设备管理 Handler
func NewDeviceHandler(deviceService service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	// 路由分发
	switch {
	case r.URL.Path == "/api/v1/devices" && r.Method == http.MethodGet:
		h.ListDevices(w, r)
	case r.URL.Path == "/api/v1/devices" && r.Method == http.MethodPost:
		h.RegisterDevice(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/devices/") && r.Method == http.MethodGet:
		h.GetDevice(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/devices/") && r.Method == http.MethodPut:
		h.UpdateDevice(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/devices/") && r.Method == http.MethodDelete:
		h.DeleteDevice(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DeviceHandler) deviceIDFromPath(path string) string {
	id := strings.TrimPrefix(path, "/api/v1/devices/")
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// ListDevices 查询设备列表（应用读取侧静默规则）
func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	devices, err := h.deviceService.ListDevices(r.Context(), userID)
	if err != nil {
		h.logger.Error("ListDevices failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if devices == nil {
		devices = []*domain.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

// RegisterDevice 注册设备
// device_id 重复 → 409，与一般失败区分
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterDeviceRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	device, err := h.deviceService.RegisterDevice(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		if strings.HasSuffix(err.Error(), "is required") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("RegisterDevice failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, device)
}

// GetDevice 查询单个设备
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id := h.deviceIDFromPath(r.URL.Path)
	userID := r.URL.Query().Get("user_id")
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "user_id and device id are required")
		return
	}

	device, err := h.deviceService.GetDevice(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		h.logger.Error("GetDevice failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// UpdateDevice 更新设备
func (h *DeviceHandler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := h.deviceIDFromPath(r.URL.Path)
	userID := r.URL.Query().Get("user_id")
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "user_id and device id are required")
		return
	}

	var req service.UpdateDeviceRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	device, err := h.deviceService.UpdateDevice(r.Context(), userID, id, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		h.logger.Error("UpdateDevice failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, device)
}

// DeleteDevice 删除设备
func (h *DeviceHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := h.deviceIDFromPath(r.URL.Path)
	userID := r.URL.Query().Get("user_id")
	if id == "" || userID == "" {
		writeError(w, http.StatusBadRequest, "user_id and device id are required")
		return
	}

	if err := h.deviceService.DeleteDevice(r.Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		h.logger.Error("DeleteDevice failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
