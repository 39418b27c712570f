package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// Load issues the three bulk fetches in parallel. Each collection is replaced on its
// own success; a failed fetch is logged and leaves that collection untouched. The
// returned error is the first failure, if any. Nothing is retried.
func (w *Workspace) Load(ctx context.Context, api backend.API, token string) error {
	gen := w.Generation()

	var g errgroup.Group
	g.Go(func() error {
		return fetchInto(w, gen, "users", &w.users, func() ([]models.User, error) {
			return api.ListUsers(ctx, token)
		})
	})
	g.Go(func() error {
		return fetchInto(w, gen, "projects", &w.projects, func() ([]models.Project, error) {
			return api.ListProjects(ctx, token)
		})
	})
	g.Go(func() error {
		return fetchInto(w, gen, "tasks", &w.tasks, func() ([]models.Task, error) {
			return api.ListTasks(ctx, token)
		})
	})
	return g.Wait()
}

// EnsureRoles fetches the role list once per session.
func (w *Workspace) EnsureRoles(ctx context.Context, api backend.API, token string) error {
	w.mu.Lock()
	loaded := w.roles.Loaded()
	gen := w.generation
	w.mu.Unlock()
	if loaded {
		return nil
	}
	return fetchInto(w, gen, "roles", &w.roles, func() ([]models.Role, error) {
		return api.ListRoles(ctx, token)
	})
}

func fetchInto[T Record](w *Workspace, gen uint64, name string, coll *Collection[T], fetch func() ([]T, error)) error {
	items, err := fetch()
	if err != nil {
		log.Printf("⚠️  Failed to fetch %s: %v", name, err)
		return fmt.Errorf("fetch %s: %w", name, err)
	}
	if err := w.commit(gen, func() { coll.Replace(items) }); err != nil {
		log.Printf("⚠️  Discarded %s fetched before a reset", name)
		return err
	}
	return nil
}

// ================= Mutations =================
// Every mutation calls the backend first and reconciles the cache only after the
// server confirms. On failure the cache is untouched and a notice is queued.

// CreateTask 创建任务
func (w *Workspace) CreateTask(ctx context.Context, api backend.API, token string, payload models.TaskPayload) (*models.Task, error) {
	return create(w, &w.tasks, "task", func() (*models.Task, error) {
		return api.CreateTask(ctx, token, payload)
	})
}

// UpdateTask 更新任务
func (w *Workspace) UpdateTask(ctx context.Context, api backend.API, token string, id models.ID, payload models.TaskPayload) (*models.Task, error) {
	return update(w, &w.tasks, "task", func() (*models.Task, error) {
		return api.UpdateTask(ctx, token, id, payload)
	})
}

// DeleteTask 删除任务
func (w *Workspace) DeleteTask(ctx context.Context, api backend.API, token string, id models.ID) error {
	return remove(w, &w.tasks, "task", id, func() error {
		return api.DeleteTask(ctx, token, id)
	})
}

// CreateProject 创建项目
func (w *Workspace) CreateProject(ctx context.Context, api backend.API, token string, payload models.ProjectPayload) (*models.Project, error) {
	return create(w, &w.projects, "project", func() (*models.Project, error) {
		return api.CreateProject(ctx, token, payload)
	})
}

// UpdateProject 更新项目
func (w *Workspace) UpdateProject(ctx context.Context, api backend.API, token string, id models.ID, payload models.ProjectPayload) (*models.Project, error) {
	return update(w, &w.projects, "project", func() (*models.Project, error) {
		return api.UpdateProject(ctx, token, id, payload)
	})
}

// DeleteProject removes the project from the cache. The backend cascades the delete
// to the project's tasks, but cached tasks are left as they are until the next load.
func (w *Workspace) DeleteProject(ctx context.Context, api backend.API, token string, id models.ID) error {
	return remove(w, &w.projects, "project", id, func() error {
		return api.DeleteProject(ctx, token, id)
	})
}

// CreateUser 创建用户
func (w *Workspace) CreateUser(ctx context.Context, api backend.API, token string, payload models.UserPayload) (*models.User, error) {
	return create(w, &w.users, "user", func() (*models.User, error) {
		return api.CreateUser(ctx, token, payload)
	})
}

// UpdateUser 更新用户
func (w *Workspace) UpdateUser(ctx context.Context, api backend.API, token string, id models.ID, payload models.UserPayload) (*models.User, error) {
	return update(w, &w.users, "user", func() (*models.User, error) {
		return api.UpdateUser(ctx, token, id, payload)
	})
}

// DeleteUser 删除用户
func (w *Workspace) DeleteUser(ctx context.Context, api backend.API, token string, id models.ID) error {
	return remove(w, &w.users, "user", id, func() error {
		return api.DeleteUser(ctx, token, id)
	})
}

func create[T Record](w *Workspace, coll *Collection[T], kind string, call func() (*T, error)) (*T, error) {
	gen := w.Generation()
	rec, err := call()
	if err != nil {
		w.fail(gen, "create", kind, err)
		return nil, err
	}
	if rec == nil || (*rec).GetID().IsZero() {
		err := fmt.Errorf("create %s: response carried no id", kind)
		w.fail(gen, "create", kind, err)
		return nil, err
	}
	if err := w.commit(gen, func() { coll.append(*rec) }); err != nil {
		return nil, err
	}
	return rec, nil
}

func update[T Record](w *Workspace, coll *Collection[T], kind string, call func() (*T, error)) (*T, error) {
	gen := w.Generation()
	rec, err := call()
	if err != nil {
		w.fail(gen, "update", kind, err)
		return nil, err
	}
	if rec == nil {
		err := fmt.Errorf("update %s: empty response", kind)
		w.fail(gen, "update", kind, err)
		return nil, err
	}
	if err := w.commit(gen, func() {
		if !coll.replace(*rec) {
			log.Printf("⚠️  Updated %s %s is not in the cache", kind, (*rec).GetID())
		}
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

func remove[T Record](w *Workspace, coll *Collection[T], kind string, id models.ID, call func() error) error {
	gen := w.Generation()
	if err := call(); err != nil {
		w.fail(gen, "delete", kind, err)
		return err
	}
	return w.commit(gen, func() { coll.remove(id) })
}

// fail queues a notice for a failed mutation. Rejected sessions are handled by the
// caller (logout), so no notice is queued for them.
func (w *Workspace) fail(gen uint64, verb, kind string, err error) {
	log.Printf("❌ Failed to %s %s: %v", verb, kind, err)
	if errors.Is(err, backend.ErrUnauthorized) {
		return
	}
	msg := backend.DetailOf(err)
	if msg == "" {
		msg = fmt.Sprintf("Failed to %s %s. Please try again.", verb, kind)
	}
	_ = w.commit(gen, func() {
		w.notices = append(w.notices, Notice{Level: NoticeError, Message: msg})
	})
}
