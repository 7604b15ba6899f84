package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/repository"
	"greenhouse-data/internal/service"

	"go.uber.org/zap"
)

// ReadingsHandler 历史读数查询/导出 Handler
type ReadingsHandler struct {
	readingsRepo  repository.ReadingsRepository
	exportService service.ExportService
	logger        *zap.Logger
}

// NewReadingsHandler 创建读数查询 Handler
func NewReadingsHandler(readingsRepo repository.ReadingsRepository, exportService service.ExportService, logger *zap.Logger) *ReadingsHandler {
	return &ReadingsHandler{
		readingsRepo:  readingsRepo,
		exportService: exportService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ReadingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	switch {
	case r.URL.Path == "/api/v1/readings" && r.Method == http.MethodGet:
		h.ListReadings(w, r)
	case r.URL.Path == "/api/v1/readings/export" && r.Method == http.MethodGet:
		h.ExportReadings(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func filtersFromQuery(r *http.Request) repository.ReadingFilters {
	q := r.URL.Query()
	return repository.ReadingFilters{
		ZoneID: q.Get("zone_id"),
		From:   parseTime(q.Get("from")),
		To:     parseTime(q.Get("to")),
		Limit:  parseInt(q.Get("limit"), 0),
	}
}

// ListReadings 查询历史读数（仪表盘图表数据源）
func (h *ReadingsHandler) ListReadings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	readings, err := h.readingsRepo.ListReadings(r.Context(), userID, filtersFromQuery(r))
	if err != nil {
		h.logger.Error("ListReadings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if readings == nil {
		readings = []*domain.SensorReading{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": readings})
}

// ExportReadings 导出历史读数为 xlsx 附件
func (h *ReadingsHandler) ExportReadings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	data, err := h.exportService.ExportReadings(r.Context(), userID, filtersFromQuery(r))
	if err != nil {
		h.logger.Error("ExportReadings failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("sensor_readings_%s.xlsx", time.Now().Format("20060102_150405"))
	setCORS(w)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("write export response failed", zap.Error(err))
	}
}
