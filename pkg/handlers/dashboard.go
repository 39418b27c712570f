package handlers

import (
	"net/http"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/views"
)

// DashboardHandler 仪表盘处理器
type DashboardHandler struct {
	*App
}

// NewDashboardHandler 创建仪表盘处理器
func NewDashboardHandler(app *App) *DashboardHandler {
	return &DashboardHandler{App: app}
}

// Show GET / recomputes every aggregate from the current cache.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	d := views.BuildDashboard(rq.s.Principal, rq.ws.Snapshot(), h.now())
	h.page(w, r, rq, templates.PageDashboard, "Dashboard", d, d)
}
