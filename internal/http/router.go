package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux (method + wildcard patterns)
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

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes liveness probe
func (r *Router) RegisterHealthRoutes() {
	r.Handle("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("healthy"))
	})
}

// RegisterReportRoutes admin report API and the authenticated presentation view
func (r *Router) RegisterReportRoutes(h *ReportsHandler) {
	r.Handle("POST /admin/api/v1/projects/{projectId}/reports", h.GenerateReport)
	r.Handle("GET /admin/api/v1/reports", h.ListReports)
	r.Handle("GET /admin/api/v1/reports/{id}", h.GetReport)
	r.Handle("DELETE /admin/api/v1/reports/{id}", h.DeleteReport)
	r.Handle("GET /admin/api/v1/reports/{id}/slides", h.GetSlides)
	r.Handle("GET /admin/api/v1/reports/{id}/present", h.Present)
	r.Handle("GET /admin/api/v1/reports/{id}/export", h.Export)
	r.Handle("GET /admin/api/v1/reports/{id}/share-link", h.ShareLink)
}

// RegisterShareRoutes unauthenticated share-token routes
func (r *Router) RegisterShareRoutes(h *ShareHandler) {
	r.Handle("GET /share/api/v1/reports/{token}", h.GetSharedReport)
	r.Handle("GET /share/report/{token}", h.PresentShared)
}
