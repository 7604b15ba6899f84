package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterIngestRoutes 注册遥测摄入路由（与前端 Supabase function 路径对齐）
func (r *Router) RegisterIngestRoutes(ingest *IngestHandler, notification *NotificationHandler) {
	r.mux.Handle("/functions/v1/iot-sensor-ingest", ingest)
	r.mux.Handle("/functions/v1/send-notification", notification)
}

// RegisterAPIRoutes 注册仪表盘管理路由
func (r *Router) RegisterAPIRoutes(
	devices *DeviceHandler,
	alerts *AlertSettingsHandler,
	greenhouse *GreenhouseHandler,
	readings *ReadingsHandler,
) {
	r.mux.Handle("/api/v1/devices", devices)
	r.mux.Handle("/api/v1/devices/", devices)

	r.mux.Handle("/api/v1/alert-settings", alerts)
	r.mux.Handle("/api/v1/alert-settings/", alerts)

	r.mux.Handle("/api/v1/zones", greenhouse)
	r.mux.Handle("/api/v1/zones/", greenhouse)
	r.mux.Handle("/api/v1/plants", greenhouse)
	r.mux.Handle("/api/v1/plants/", greenhouse)
	r.mux.Handle("/api/v1/schedules", greenhouse)
	r.mux.Handle("/api/v1/schedules/", greenhouse)

	r.mux.Handle("/api/v1/readings", readings)
	r.mux.Handle("/api/v1/readings/export", readings)
}

// RegisterHealthRoutes 注册健康检查路由
func (r *Router) RegisterHealthRoutes() {
	r.mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
}
