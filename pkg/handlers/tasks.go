package handlers

import (
	"net/http"
	"net/url"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/policy"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/views"
)

// TaskHandler 任务页处理器
type TaskHandler struct {
	*App
}

// NewTaskHandler 创建任务页处理器
func NewTaskHandler(app *App) *TaskHandler {
	return &TaskHandler{App: app}
}

// taskFilter reads the project and owner filters from the query string.
func taskFilter(r *http.Request) views.TaskFilter {
	return views.TaskFilter{
		Project: models.ID(utils.GetQueryParam(r, "project", "")),
		Owner:   models.ID(utils.GetQueryParam(r, "owner", "")),
	}
}

// filterQuery encodes the active filters so form actions keep them.
func filterQuery(f views.TaskFilter) string {
	v := url.Values{}
	if !f.Project.IsZero() {
		v.Set("project", f.Project.String())
	}
	if !f.Owner.IsZero() {
		v.Set("owner", f.Owner.String())
	}
	return v.Encode()
}

func tasksTarget(r *http.Request) string {
	if q := filterQuery(taskFilter(r)); q != "" {
		return "/tasks?" + q
	}
	return "/tasks"
}

// List GET /tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	p := rq.s.Principal
	f := taskFilter(r)
	snap := rq.ws.Snapshot()
	list := views.BuildTaskList(p, snap, f, h.now())
	form := readPage(rq.ws, tasksPage)

	statusOnly := false
	if form.Edit.Open && form.Edit.Mode == forms.ModeEdit {
		if t, found := store.Find(snap.Tasks, form.Edit.TargetID); found {
			statusOnly = policy.StatusOnly(p, &t)
		}
	}

	body := templates.TasksBody{List: list, Form: form, StatusOnly: statusOnly, Query: filterQuery(f)}
	h.page(w, r, rq, templates.PageTasks, "Tasks", body, map[string]interface{}{
		"list":        list,
		"form":        formState(form),
		"status_only": statusOnly,
	})
}

// New POST /tasks/new 打开创建表单
func (h *TaskHandler) New(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	if !policy.CanCreateTask(rq.s.Principal) {
		h.reject(w, r, errForbidden)
		return
	}
	var pg forms.Page[forms.TaskForm]
	withPage(rq.ws, tasksPage, func(p *forms.Page[forms.TaskForm]) {
		p.OpenCreate(forms.DefaultTaskForm())
		pg = *p
	})
	done(w, r, tasksTarget(r), http.StatusOK, formState(pg))
}

// Edit POST /tasks/{id}/edit 以任务当前值打开编辑表单
func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	t, err := h.task(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	if !policy.CanEditTask(rq.s.Principal, &t) {
		h.reject(w, r, errForbidden)
		return
	}
	var pg forms.Page[forms.TaskForm]
	withPage(rq.ws, tasksPage, func(p *forms.Page[forms.TaskForm]) {
		p.OpenEdit(t.ID, forms.TaskFormFrom(t))
		pg = *p
	})
	done(w, r, tasksTarget(r), http.StatusOK, formState(pg))
}

// Save POST /tasks/save 提交创建或编辑表单
func (h *TaskHandler) Save(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	values, err := formValues(r)
	if err != nil {
		utils.WriteBadRequestResponse(w, err.Error())
		return
	}
	p := rq.s.Principal
	ctx := r.Context()

	save(h.App, w, r, rq, saveFlow[forms.TaskForm, models.Task]{
		kind:   "task",
		target: tasksTarget(r),
		sel:    tasksPage,
		check: func(edit forms.EditSession[forms.TaskForm], submitted forms.TaskForm) (forms.TaskForm, map[string]string, error) {
			if edit.Mode == forms.ModeCreate {
				if !policy.CanCreateTask(p) {
					return submitted, nil, errForbidden
				}
				return submitted, submitted.Validate(), nil
			}
			t, err := h.task(rq, edit.TargetID)
			if err != nil {
				return submitted, nil, err
			}
			switch {
			case policy.CanEditTaskAllFields(p, &t):
				return submitted, submitted.Validate(), nil
			case policy.CanEditTaskStatus(p, &t):
				// only the status comes from the submission
				kept := forms.TaskFormFrom(t)
				kept.Status = submitted.Status
				return kept, kept.ValidateStatus(), nil
			default:
				return submitted, nil, errForbidden
			}
		},
		create: func(f forms.TaskForm) (*models.Task, error) {
			return rq.ws.CreateTask(ctx, h.api, rq.s.Token, f.Payload())
		},
		update: func(id models.ID, f forms.TaskForm) (*models.Task, error) {
			return rq.ws.UpdateTask(ctx, h.api, rq.s.Token, id, f.Payload())
		},
	}, forms.ParseTaskForm(values))
}

// Cancel POST /tasks/cancel 放弃编辑
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, tasksPage, func(p *forms.Page[forms.TaskForm]) { p.Edit.Cancel() })
	done(w, r, tasksTarget(r), http.StatusOK, formState(readPage(rq.ws, tasksPage)))
}

// RequestDelete POST /tasks/{id}/delete asks for confirmation.
func (h *TaskHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	t, err := h.task(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	if !policy.CanDeleteTask(rq.s.Principal, &t) {
		h.reject(w, r, errForbidden)
		return
	}
	withPage(rq.ws, tasksPage, func(p *forms.Page[forms.TaskForm]) {
		p.RequestDelete(t.ID, forms.DeleteTaskMessage)
	})
	done(w, r, tasksTarget(r), http.StatusOK, formState(readPage(rq.ws, tasksPage)))
}

// ConfirmDelete POST /tasks/{id}/delete/confirm
func (h *TaskHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	t, err := h.task(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	if !policy.CanDeleteTask(rq.s.Principal, &t) {
		h.reject(w, r, errForbidden)
		return
	}
	confirmDelete(h.App, w, r, rq, tasksPage, tasksTarget(r), "task", t.ID, func() error {
		return rq.ws.DeleteTask(r.Context(), h.api, rq.s.Token, t.ID)
	})
}

// CancelDelete POST /tasks/delete/cancel
func (h *TaskHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.begin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, tasksPage, func(p *forms.Page[forms.TaskForm]) { p.CancelDelete() })
	done(w, r, tasksTarget(r), http.StatusOK, formState(readPage(rq.ws, tasksPage)))
}

// task looks a task up in the cache.
func (h *TaskHandler) task(rq *request, id models.ID) (models.Task, error) {
	t, ok := store.Find(rq.ws.Snapshot().Tasks, id)
	if !ok {
		return t, notFound("Task")
	}
	return t, nil
}
