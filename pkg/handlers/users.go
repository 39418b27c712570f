package handlers

import (
	"log"
	"net/http"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/policy"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/templates"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/utils"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/views"
)

const usersPath = "/users"

// UserHandler 用户管理处理器（仅管理员）
type UserHandler struct {
	*App
}

// NewUserHandler 创建用户管理处理器
func NewUserHandler(app *App) *UserHandler {
	return &UserHandler{App: app}
}

// admin returns the request when the principal may manage users, with the role
// list loaded.
func (h *UserHandler) admin(w http.ResponseWriter, r *http.Request) (*request, bool) {
	rq, ok := h.begin(w, r)
	if !ok {
		return nil, false
	}
	if !policy.CanManageUsers(rq.s.Principal) {
		h.reject(w, r, errForbidden)
		return nil, false
	}
	if err := rq.ws.EnsureRoles(r.Context(), h.api, rq.s.Token); err != nil {
		if h.rejected(w, r, rq.s.ID, err) {
			return nil, false
		}
		log.Printf("⚠️  Role list unavailable: %v", err)
	}
	return rq, true
}

// List GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	list := views.BuildUserList(rq.ws.Snapshot())
	form := readPage(rq.ws, usersPage)
	h.page(w, r, rq, templates.PageUsers, "Users", templates.UsersBody{List: list, Form: form},
		map[string]interface{}{"list": list, "form": formState(form)})
}

// New POST /users/new
func (h *UserHandler) New(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, usersPage, func(p *forms.Page[forms.UserForm]) {
		p.OpenCreate(forms.DefaultUserForm())
	})
	done(w, r, usersPath, http.StatusOK, formState(readPage(rq.ws, usersPage)))
}

// Edit POST /users/{id}/edit
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	u, err := h.user(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	withPage(rq.ws, usersPage, func(p *forms.Page[forms.UserForm]) {
		p.OpenEdit(u.ID, forms.UserFormFrom(u))
	})
	done(w, r, usersPath, http.StatusOK, formState(readPage(rq.ws, usersPage)))
}

// Save POST /users/save
// A blank password on edit leaves the current password unchanged.
func (h *UserHandler) Save(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	values, err := formValues(r)
	if err != nil {
		utils.WriteBadRequestResponse(w, err.Error())
		return
	}
	ctx := r.Context()

	save(h.App, w, r, rq, saveFlow[forms.UserForm, models.User]{
		kind:   "user",
		target: usersPath,
		sel:    usersPage,
		check: func(edit forms.EditSession[forms.UserForm], submitted forms.UserForm) (forms.UserForm, map[string]string, error) {
			if edit.Mode == forms.ModeEdit {
				if _, err := h.user(rq, edit.TargetID); err != nil {
					return submitted, nil, err
				}
			}
			return submitted, submitted.Validate(edit.Mode), nil
		},
		scrub: forms.UserForm.WithoutPassword,
		create: func(f forms.UserForm) (*models.User, error) {
			return rq.ws.CreateUser(ctx, h.api, rq.s.Token, f.Payload())
		},
		update: func(id models.ID, f forms.UserForm) (*models.User, error) {
			return rq.ws.UpdateUser(ctx, h.api, rq.s.Token, id, f.Payload())
		},
	}, forms.ParseUserForm(values))
}

// Cancel POST /users/cancel
func (h *UserHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, usersPage, func(p *forms.Page[forms.UserForm]) { p.Edit.Cancel() })
	done(w, r, usersPath, http.StatusOK, formState(readPage(rq.ws, usersPage)))
}

// RequestDelete POST /users/{id}/delete
func (h *UserHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	u, err := h.user(rq, idParam(r))
	if err != nil {
		h.reject(w, r, err)
		return
	}
	withPage(rq.ws, usersPage, func(p *forms.Page[forms.UserForm]) {
		p.RequestDelete(u.ID, forms.DeleteUserMessage)
	})
	done(w, r, usersPath, http.StatusOK, formState(readPage(rq.ws, usersPage)))
}

// ConfirmDelete POST /users/{id}/delete/confirm
func (h *UserHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	id := idParam(r)
	confirmDelete(h.App, w, r, rq, usersPage, usersPath, "user", id, func() error {
		return rq.ws.DeleteUser(r.Context(), h.api, rq.s.Token, id)
	})
}

// CancelDelete POST /users/delete/cancel
func (h *UserHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	rq, ok := h.admin(w, r)
	if !ok {
		return
	}
	withPage(rq.ws, usersPage, func(p *forms.Page[forms.UserForm]) { p.CancelDelete() })
	done(w, r, usersPath, http.StatusOK, formState(readPage(rq.ws, usersPage)))
}

func (h *UserHandler) user(rq *request, id models.ID) (models.User, error) {
	u, ok := store.Find(rq.ws.Snapshot().Users, id)
	if !ok {
		return u, notFound("User")
	}
	return u, nil
}
