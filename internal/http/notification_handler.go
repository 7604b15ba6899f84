package httpapi

import (
	"net/http"

	"greenhouse-data/internal/domain"
	"greenhouse-data/internal/service"

	"go.uber.org/zap"
)

// NotificationHandler 通知投递 Handler
// POST /functions/v1/send-notification
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler 创建通知投递 Handler
func NewNotificationHandler(notificationService service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	h.SendNotification(w, r)
}

// SendNotification 发送通知邮件
func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.notificationService == nil {
		writeError(w, http.StatusServiceUnavailable, "email delivery is not configured")
		return
	}

	// 1. 参数解析
	var req domain.NotificationRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 2. 调用 Service
	emailResponse, err := h.notificationService.SendNotification(ctx, &req)
	if err != nil {
		h.logger.Error("SendNotification failed",
			zap.String("type", req.Type),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 3. 响应
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"emailResponse": emailResponse,
	})
}
