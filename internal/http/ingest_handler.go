package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"greenhouse-data/internal/service"

	"go.uber.org/zap"
)

// IngestHandler 遥测接入 Handler
// POST /functions/v1/iot-sensor-ingest
type IngestHandler struct {
	ingestService service.IngestService
	logger        *zap.Logger
}

// NewIngestHandler 创建遥测接入 Handler
func NewIngestHandler(ingestService service.IngestService, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS 预检
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.Ingest(w, r)
}

// ingestBody 请求体：单条读数对象，或携带 readings 数组的批量形式
type ingestBody struct {
	Readings *json.RawMessage `json:"readings"`
}

// Ingest 处理遥测上报
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. 解析请求体（单条 / 批量两种形式）
	var raw json.RawMessage
	if err := readBodyJSON(r, 1<<20, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var payloads []service.ReadingPayload
	var probe ingestBody
	if err := json.Unmarshal(raw, &probe); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if probe.Readings != nil {
		if err := json.Unmarshal(*probe.Readings, &payloads); err != nil {
			writeError(w, http.StatusBadRequest, "invalid readings array")
			return
		}
	} else {
		var single service.ReadingPayload
		if err := json.Unmarshal(raw, &single); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		payloads = []service.ReadingPayload{single}
	}

	// 2. 调用 Service
	result, err := h.ingestService.Ingest(ctx, payloads)
	if err != nil {
		// 校验错误 → 400；存储错误 → 500（透传错误信息）
		if errors.Is(err, service.ErrNoReadings) || errors.Is(err, service.ErrMissingUserID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Ingest failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 3. 响应
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         fmt.Sprintf("Processed %d sensor readings", len(result.Readings)),
		"readings":        result.Readings,
		"devices_updated": result.DevicesUpdated,
	})
}
