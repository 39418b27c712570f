package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
)

// statusError is a request failure with the status it should be answered with.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return e.message
}

var (
	errForbidden   = &statusError{status: http.StatusForbidden, message: "You are not allowed to do that."}
	errFormClosed  = &statusError{status: http.StatusConflict, message: "The form is no longer open."}
	errUnconfirmed = &statusError{status: http.StatusConflict, message: "Delete was not confirmed."}
)

func notFound(kind string) error {
	return &statusError{status: http.StatusNotFound, message: fmt.Sprintf("%s not found", kind)}
}

// reject answers a statusError; anything else is a 500.
func (a *App) reject(w http.ResponseWriter, r *http.Request, err error) {
	var se *statusError
	if errors.As(err, &se) {
		a.fail(w, r, se.status, se.message)
		return
	}
	a.fail(w, r, http.StatusInternalServerError, err.Error())
}

// idParam 读取路径中的 {id}
func idParam(r *http.Request) models.ID {
	return models.ID(chi.URLParam(r, "id"))
}

// formPage selects the edit state of one page.
type formPage[F any] func(*store.FormState) *forms.Page[F]

func tasksPage(fs *store.FormState) *forms.Page[forms.TaskForm]       { return &fs.Tasks }
func projectsPage(fs *store.FormState) *forms.Page[forms.ProjectForm] { return &fs.Projects }
func usersPage(fs *store.FormState) *forms.Page[forms.UserForm]       { return &fs.Users }

// readPage 返回页面编辑状态的副本
func readPage[F any](ws *store.Workspace, sel formPage[F]) forms.Page[F] {
	var out forms.Page[F]
	ws.Forms(func(fs *store.FormState) { out = *sel(fs) })
	return out
}

// withPage runs fn with exclusive access to the edit state of one page.
func withPage[F any](ws *store.Workspace, sel formPage[F], fn func(*forms.Page[F])) {
	ws.Forms(func(fs *store.FormState) { fn(sel(fs)) })
}

// saveFlow is what a save needs to know about one kind of record.
type saveFlow[F any, T any] struct {
	kind   string
	target string
	sel    formPage[F]
	// check authorizes the submission against the open session and validates
	// it. It returns the values to send.
	check func(edit forms.EditSession[F], submitted F) (F, map[string]string, error)
	// scrub clears values that must not stay in the session after submit.
	scrub  func(F) F
	create func(F) (*T, error)
	update func(models.ID, F) (*T, error)
}

// save submits the open edit session of a page. The session stays open on a
// validation or server failure and closes after the server confirms.
func save[F any, T any](a *App, w http.ResponseWriter, r *http.Request, rq *request, flow saveFlow[F, T], submitted F) {
	open := readPage(rq.ws, flow.sel).Edit
	if !open.Open {
		a.reject(w, r, errFormClosed)
		return
	}

	values, errs, err := flow.check(open, submitted)
	if err != nil {
		a.reject(w, r, err)
		return
	}

	var sub forms.Submission[F]
	withPage(rq.ws, flow.sel, func(pg *forms.Page[F]) {
		if !pg.Edit.Open || pg.Edit.Mode != open.Mode || !pg.Edit.TargetID.Equal(open.TargetID) {
			err = errFormClosed
			return
		}
		if err = pg.Edit.SetValues(values); err != nil {
			return
		}
		if errs != nil {
			pg.Edit.Fail(errs)
		} else {
			sub, err = pg.Edit.Submit()
		}
		if flow.scrub != nil {
			pg.Edit.Values = flow.scrub(pg.Edit.Values)
		}
	})
	if err != nil {
		a.reject(w, r, errFormClosed)
		return
	}
	if errs != nil {
		invalid(w, r, flow.target, errs)
		return
	}

	var saved *T
	verb, status := "update", http.StatusOK
	if sub.IsCreate() {
		verb, status = "create", http.StatusCreated
		saved, err = flow.create(sub.Values)
	} else {
		saved, err = flow.update(sub.ID, sub.Values)
	}
	if err != nil {
		a.mutationFailed(w, r, rq, flow.target, verb, flow.kind, err)
		return
	}

	withPage(rq.ws, flow.sel, func(pg *forms.Page[F]) {
		if pg.Edit.Open && pg.Edit.Mode == sub.Mode && pg.Edit.TargetID.Equal(sub.ID) {
			pg.Edit.Complete()
		}
	})
	done(w, r, flow.target, status, saved)
}

// confirmDelete consumes the pending confirmation for id and issues the delete.
func confirmDelete[F any](a *App, w http.ResponseWriter, r *http.Request, rq *request, sel formPage[F], target, kind string, id models.ID, del func() error) {
	var err error
	withPage(rq.ws, sel, func(pg *forms.Page[F]) {
		err = pg.ConfirmDelete(id)
	})
	if err != nil {
		a.reject(w, r, errUnconfirmed)
		return
	}
	if err := del(); err != nil {
		a.mutationFailed(w, r, rq, target, "delete", kind, err)
		return
	}
	done(w, r, target, http.StatusOK, map[string]interface{}{"deleted": id})
}

// formState is the JSON view of a page's edit state.
func formState[F any](pg forms.Page[F]) map[string]interface{} {
	return map[string]interface{}{
		"edit":   pg.Edit,
		"delete": pg.Delete,
	}
}
