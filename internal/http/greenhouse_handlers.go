package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/repository"

	"go.uber.org/zap"
)

// GreenhouseHandler 温室展示数据 Handler（分区/植物/计划）
// 纯 CRUD，无业务规则，直接持有 Repository
type GreenhouseHandler struct {
	zonesRepo     repository.ZonesRepository
	plantsRepo    repository.PlantsRepository
	schedulesRepo repository.SchedulesRepository
	logger        *zap.Logger
}

// NewGreenhouseHandler 创建温室展示数据 Handler
func NewGreenhouseHandler(
	zonesRepo repository.ZonesRepository,
	plantsRepo repository.PlantsRepository,
	schedulesRepo repository.SchedulesRepository,
	logger *zap.Logger,
) *GreenhouseHandler {
	return &GreenhouseHandler{
		zonesRepo:     zonesRepo,
		plantsRepo:    plantsRepo,
		schedulesRepo: schedulesRepo,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *GreenhouseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch {
	// zones
	case r.URL.Path == "/api/v1/zones" && r.Method == http.MethodGet:
		h.ListZones(w, r)
	case r.URL.Path == "/api/v1/zones" && r.Method == http.MethodPost:
		h.CreateZone(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/zones/") && r.Method == http.MethodPut:
		h.UpdateZone(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/zones/") && r.Method == http.MethodDelete:
		h.DeleteZone(w, r)

	// plants
	case r.URL.Path == "/api/v1/plants" && r.Method == http.MethodGet:
		h.ListPlants(w, r)
	case r.URL.Path == "/api/v1/plants" && r.Method == http.MethodPost:
		h.CreatePlant(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/plants/") && r.Method == http.MethodPut:
		h.UpdatePlant(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/plants/") && r.Method == http.MethodDelete:
		h.DeletePlant(w, r)

	// schedules
	case r.URL.Path == "/api/v1/schedules" && r.Method == http.MethodGet:
		h.ListSchedules(w, r)
	case r.URL.Path == "/api/v1/schedules" && r.Method == http.MethodPost:
		h.CreateSchedule(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/schedules/") && r.Method == http.MethodPut:
		h.UpdateSchedule(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/v1/schedules/") && r.Method == http.MethodDelete:
		h.DeleteSchedule(w, r)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *GreenhouseHandler) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return "", false
	}
	return userID, true
}

func lastSegment(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// ---- zones ----

// ListZones 查询分区列表
func (h *GreenhouseHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	zones, err := h.zonesRepo.ListZones(r.Context(), userID)
	if err != nil {
		h.logger.Error("ListZones failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if zones == nil {
		zones = []*domain.Zone{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"zones": zones})
}

// CreateZone 新建分区
func (h *GreenhouseHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var zone domain.Zone
	if err := readBodyJSON(r, 1<<20, &zone); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if zone.UserID == "" || zone.Name == "" {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}
	created, err := h.zonesRepo.CreateZone(r.Context(), &zone)
	if err != nil {
		h.logger.Error("CreateZone failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateZone 更新分区
func (h *GreenhouseHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id := lastSegment(r.URL.Path, "/api/v1/zones/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "zone id is required")
		return
	}
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	var zone domain.Zone
	if err := readBodyJSON(r, 1<<20, &zone); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.zonesRepo.UpdateZone(r.Context(), userID, id, &zone); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("UpdateZone failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteZone 删除分区
func (h *GreenhouseHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id := lastSegment(r.URL.Path, "/api/v1/zones/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "zone id is required")
		return
	}
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.zonesRepo.DeleteZone(r.Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "zone not found")
			return
		}
		h.logger.Error("DeleteZone failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ---- plants ----

// ListPlants 查询植物列表
func (h *GreenhouseHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	plants, err := h.plantsRepo.ListPlants(r.Context(), userID)
	if err != nil {
		h.logger.Error("ListPlants failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if plants == nil {
		plants = []*domain.Plant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plants": plants})
}

// CreatePlant 新建植物
func (h *GreenhouseHandler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	var plant domain.Plant
	if err := readBodyJSON(r, 1<<20, &plant); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if plant.UserID == "" || plant.Name == "" {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}
	created, err := h.plantsRepo.CreatePlant(r.Context(), &plant)
	if err != nil {
		h.logger.Error("CreatePlant failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdatePlant 更新植物
func (h *GreenhouseHandler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	id := lastSegment(r.URL.Path, "/api/v1/plants/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "plant id is required")
		return
	}
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	var plant domain.Plant
	if err := readBodyJSON(r, 1<<20, &plant); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.plantsRepo.UpdatePlant(r.Context(), userID, id, &plant); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "plant not found")
			return
		}
		h.logger.Error("UpdatePlant failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeletePlant 删除植物
func (h *GreenhouseHandler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	id := lastSegment(r.URL.Path, "/api/v1/plants/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "plant id is required")
		return
	}
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.plantsRepo.DeletePlant(r.Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "plant not found")
			return
		}
		h.logger.Error("DeletePlant failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ---- schedules ----

// ListSchedules 查询计划列表
func (h *GreenhouseHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	schedules, err := h.schedulesRepo.ListSchedules(r.Context(), userID)
	if err != nil {
		h.logger.Error("ListSchedules failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if schedules == nil {
		schedules = []*domain.Schedule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

// CreateSchedule 新建计划
func (h *GreenhouseHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var schedule domain.Schedule
	if err := readBodyJSON(r, 1<<20, &schedule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if schedule.UserID == "" || schedule.Name == "" {
		writeError(w, http.StatusBadRequest, "user_id and name are required")
		return
	}
	if schedule.Type != domain.ScheduleTypeIrrigation && schedule.Type != domain.ScheduleTypeLighting {
		writeError(w, http.StatusBadRequest, "type must be irrigation or lighting")
		return
	}
	created, err := h.schedulesRepo.CreateSchedule(r.Context(), &schedule)
	if err != nil {
		h.logger.Error("CreateSchedule failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateSchedule 更新计划
func (h *GreenhouseHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id := lastSegment(r.URL.Path, "/api/v1/schedules/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "schedule id is required")
		return
	}
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	var schedule domain.Schedule
	if err := readBodyJSON(r, 1<<20, &schedule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.schedulesRepo.UpdateSchedule(r.Context(), userID, id, &schedule); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		h.logger.Error("UpdateSchedule failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteSchedule 删除计划
func (h *GreenhouseHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := lastSegment(r.URL.Path, "/api/v1/schedules/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "schedule id is required")
		return
	}
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.schedulesRepo.DeleteSchedule(r.Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "schedule not found")
			return
		}
		h.logger.Error("DeleteSchedule failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
