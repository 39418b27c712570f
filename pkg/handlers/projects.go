package handlers

import (
	"net/http"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/policy"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/views"
)

const projectsPath = "/projects"

// ProjectHandler 项目页处理器
type ProjectHandler struct {
	*App
}

// NewProjectHandler 创建项目页处理器
func NewProjectHandler(app *App) *ProjectHandler {
	return &ProjectHandler{App: app}
}

// List GET /projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	list := views.BuildProjectList(rq.s.Principal, rq.ws.Snapshot())
	form := readPage(rq.ws, projectsPage)
	h.page(w, r, rq, templates.PageProjects, "Projects", templates.ProjectsBody{List: list, Form: form},
		map[string]interface{}{"list": list, "form": formState(form)})
}

// manager returns the request when the principal may manage projects.
func (h *ProjectHandler) manager(w http.ResponseWriter, r *http.Request) (*request, bool) {
	rq, ok := h.begin(w, r)
	if !ok {
		return nil, false
	}
	if !policy.CanManageProjects(rq.s.Principal) {
		h.reject(w, r, errForbidden)
		return nil, false
	}
	return rq, true
}

// New POST /projects/new
func (h *ProjectHandler) New(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.manager(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, projectsPage, func(p *forms.Page[forms.ProjectForm]) {
		p.OpenCreate(forms.ProjectForm{})
	})
	done(w, r, projectsPath, http.StatusOK, formState(readPage(rq.ws, projectsPage)))
}

// Edit POST /projects/{id}/edit
func (h *ProjectHandler) Edit(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.manager(w, r)
	if !ok {
		return
	}
	pr, err := h.project(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	withPage(rq.ws, projectsPage, func(p *forms.Page[forms.ProjectForm]) {
		p.OpenEdit(pr.ID, forms.ProjectFormFrom(pr))
	})
	done(w, r, projectsPath, http.StatusOK, formState(readPage(rq.ws, projectsPage)))
}

// Save POST /projects/save
func (h *ProjectHandler) Save(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.manager(w, r)
	if !ok {
		return
	}
	values, err := formValues(r)
	if err != nil {
		utils.WriteBadRequestResponse(w, err.Error())
		return
	}
	ctx := r.Context()

	save(h.App, w, r, rq, saveFlow[forms.ProjectForm, models.Project]{
		kind:   "project",
		target: projectsPath,
		sel:    projectsPage,
		check: func(edit forms.EditSession[forms.ProjectForm], submitted forms.ProjectForm) (forms.ProjectForm, map[string]string, error) {
			if edit.Mode == forms.ModeEdit {
				if _, err := h.project(rq, edit.TargetID); err != nil {
					return submitted, nil, err
				}
			}
			return submitted, submitted.Validate(), nil
		},
		create: func(f forms.ProjectForm) (*models.Project, error) {
			return rq.ws.CreateProject(ctx, h.api, rq.s.Token, f.Payload())
		},
		update: func(id models.ID, f forms.ProjectForm) (*models.Project, error) {
			return rq.ws.UpdateProject(ctx, h.api, rq.s.Token, id, f.Payload())
		},
	}, forms.ParseProjectForm(values))
}

// Cancel POST /projects/cancel
func (h *ProjectHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, projectsPage, func(p *forms.Page[forms.ProjectForm]) { p.Edit.Cancel() })
	done(w, r, projectsPath, http.StatusOK, formState(readPage(rq.ws, projectsPage)))
}

// RequestDelete POST /projects/{id}/delete
// The confirmation warns that the project's tasks are deleted with it.
func (h *ProjectHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.manager(w, r)
	if !ok {
		return
	}
	pr, err := h.project(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	withPage(rq.ws, projectsPage, func(p *forms.Page[forms.ProjectForm]) {
		p.RequestDelete(pr.ID, forms.DeleteProjectMessage)
	})
	done(w, r, projectsPath, http.StatusOK, formState(readPage(rq.ws, projectsPage)))
}

// ConfirmDelete POST /projects/{id}/delete/confirm
func (h *ProjectHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.manager(w, r)
	if !ok {
		return
	}
	id := idParam(r)
	confirmDelete(h.App, w, r, rq, projectsPage, projectsPath, "project", id, func() error {
		return rq.ws.DeleteProject(r.Context(), h.api, rq.s.Token, id)
	})
}

// CancelDelete POST /projects/delete/cancel
func (h *ProjectHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, projectsPage, func(p *forms.Page[forms.ProjectForm]) { p.CancelDelete() })
	done(w, r, projectsPath, http.StatusOK, formState(readPage(rq.ws, projectsPage)))
}

func (h *ProjectHandler) project(rq *request, id models.ID) (models.Project, error) {
	pr, ok := store.Find(rq.ws.Snapshot().Projects, id)
	if !ok {
		return pr, notFound("Project")
	}
	return pr, nil
}
