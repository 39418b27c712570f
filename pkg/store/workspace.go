package store

import (
	"errors"
	"sync"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// ErrStale is returned when a response arrives after the workspace was reset.
// The result has been discarded.
var ErrStale = errors.New("workspace was reset while the request was in flight")

// NoticeLevel 提示级别
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// FormState 每个页面的编辑状态
type FormState struct {
	Tasks    forms.Page[forms.TaskForm]
	Projects forms.Page[forms.ProjectForm]
	Users    forms.Page[forms.UserForm]
}

// Workspace 一个会话的远端集合缓存
type Workspace struct {
	mu         sync.Mutex
	generation uint64

	users    Collection[models.User]
	projects Collection[models.Project]
	tasks    Collection[models.Task]
	roles    Collection[models.Role]

	forms   FormState
	notices []Notice
}

// NewWorkspace 创建空的工作区
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Snapshot is a consistent copy of the cached collections for rendering.
type Snapshot struct {
	Generation     uint64
	Users          []models.User
	Projects       []models.Project
	Tasks          []models.Task
	Roles          []models.Role
	UsersLoaded    bool
	ProjectsLoaded bool
	TasksLoaded    bool
}

// Snapshot 返回当前缓存的副本
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Generation:     w.generation,
		Users:          w.users.Items(),
		Projects:       w.projects.Items(),
		Tasks:          w.tasks.Items(),
		Roles:          w.roles.Items(),
		UsersLoaded:    w.users.Loaded(),
		ProjectsLoaded: w.projects.Loaded(),
		TasksLoaded:    w.tasks.Loaded(),
	}
}

// Generation 当前代数
func (w *Workspace) Generation() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generation
}

// Loaded reports whether the initial bulk load has been attempted for every collection.
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.users.Loaded() && w.projects.Loaded() && w.tasks.Loaded()
}

// Reset clears everything and bumps the generation so in-flight results are dropped.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generation++
	w.users.reset()
	w.projects.reset()
	w.tasks.reset()
	w.roles.reset()
	w.forms = FormState{}
	w.notices = nil
}

// Forms runs fn with exclusive access to the page edit state.
func (w *Workspace) Forms(fn func(*FormState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.forms)
}

// Notify 追加一条提示
func (w *Workspace) Notify(level NoticeLevel, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notices = append(w.notices, Notice{Level: level, Message: message})
}

// TakeNotices 取出并清空提示
func (w *Workspace) TakeNotices() []Notice {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.notices
	w.notices = nil
	return out
}

// commit applies fn only if the workspace is still at generation gen.
func (w *Workspace) commit(gen uint64, fn func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation != gen {
		return ErrStale
	}
	fn()
	return nil
}
