// Package backendtest provides an in-memory backend.API for tests.
package backendtest

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// Account 可登录的账号
type Account struct {
	Password  string
	Principal models.Principal
	Token     string
}

// Fake is an in-memory backend. Fields may be set directly before use; the
// exported error fields force the matching call to fail.
type Fake struct {
	mu sync.Mutex

	Users    []models.User
	Projects []models.Project
	Tasks    []models.Task
	Roles    []models.Role

	// Accounts keyed by email for Login
	Accounts map[string]Account
	// SSO maps an id token to the role lookup response
	SSO map[string]models.RoleLookupResponse

	ErrListUsers    error
	ErrListProjects error
	ErrListTasks    error
	ErrListRoles    error
	ErrMutation     error

	// Calls counts invocations by method name.
	Calls map[string]int
	// Tokens records the bearer token seen by each method.
	Tokens map[string]string

	nextID int
}

var _ backend.API = (*Fake)(nil)

// New 创建空的 Fake
func New() *Fake {
	return &Fake{
		Accounts: map[string]Account{},
		SSO:      map[string]models.RoleLookupResponse{},
		Calls:    map[string]int{},
		Tokens:   map[string]string{},
		nextID:   1000,
	}
}

// Err builds an API error with the given status and detail.
func Err(status int, detail string) error {
	return &backend.APIError{StatusCode: status, Detail: detail}
}

// Unauthorized 模拟 401
func Unauthorized() error {
	return Err(http.StatusUnauthorized, "Not authenticated")
}

// CallCount 返回某方法被调用的次数
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

func (f *Fake) record(method, token string) {
	f.Calls[method]++
	f.Tokens[method] = token
}

func (f *Fake) newID() models.ID {
	f.nextID++
	return models.ID(strconv.Itoa(f.nextID))
}

func (f *Fake) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Login", "")
	acc, ok := f.Accounts[email]
	if !ok || acc.Password != password {
		return nil, Err(http.StatusUnauthorized, "Invalid email or password")
	}
	return &models.LoginResponse{Principal: acc.Principal, AccessToken: acc.Token}, nil
}

func (f *Fake) GetRole(ctx context.Context, idToken string) (*models.RoleLookupResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRole", idToken)
	resp, ok := f.SSO[idToken]
	if !ok {
		return nil, Err(http.StatusNotFound, "User not found")
	}
	return &resp, nil
}

func (f *Fake) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListUsers", token)
	if f.ErrListUsers != nil {
		return nil, f.ErrListUsers
	}
	return append([]models.User(nil), f.Users...), nil
}

func (f *Fake) CreateUser(ctx context.Context, token string, payload models.UserPayload) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateUser", token)
	if f.ErrMutation != nil {
		return nil, f.ErrMutation
	}
	u := models.User{ID: f.newID(), Name: payload.Name, Email: payload.Email, RoleID: payload.RoleID}
	f.Users = append(f.Users, u)
	return &u, nil
}

func (f *Fake) UpdateUser(ctx context.Context, token string, id models.ID, payload models.UserPayload) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateUser", token)
	if f.ErrMutation != nil {
		return nil, f.ErrMutation
	}
	for i := range f.Users {
		if f.Users[i].ID.Equal(id) {
			f.Users[i] = models.User{ID: id, Name: payload.Name, Email: payload.Email, RoleID: payload.RoleID}
			u := f.Users[i]
			return &u, nil
		}
	}
	return nil, Err(http.StatusNotFound, "User not found")
}

func (f *Fake) DeleteUser(ctx context.Context, token string, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteUser", token)
	if f.ErrMutation != nil {
		return f.ErrMutation
	}
	for i := range f.Users {
		if f.Users[i].ID.Equal(id) {
			f.Users = append(f.Users[:i], f.Users[i+1:]...)
			return nil
		}
	}
	return Err(http.StatusNotFound, "User not found")
}

func (f *Fake) ListRoles(ctx context.Context, token string) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListRoles", token)
	if f.ErrListRoles != nil {
		return nil, f.ErrListRoles
	}
	return append([]models.Role(nil), f.Roles...), nil
}

func (f *Fake) ListProjects(ctx context.Context, token string) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListProjects", token)
	if f.ErrListProjects != nil {
		return nil, f.ErrListProjects
	}
	return append([]models.Project(nil), f.Projects...), nil
}

func (f *Fake) CreateProject(ctx context.Context, token string, payload models.ProjectPayload) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProject", token)
	if f.ErrMutation != nil {
		return nil, f.ErrMutation
	}
	p := models.Project{ID: f.newID(), Name: payload.Name, Description: payload.Description,
		StartDate: payload.StartDate, EndDate: payload.EndDate, OwnerID: payload.OwnerID}
	f.Projects = append(f.Projects, p)
	return &p, nil
}

func (f *Fake) UpdateProject(ctx context.Context, token string, id models.ID, payload models.ProjectPayload) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateProject", token)
	if f.ErrMutation != nil {
		return nil, f.ErrMutation
	}
	for i := range f.Projects {
		if f.Projects[i].ID.Equal(id) {
			f.Projects[i] = models.Project{ID: id, Name: payload.Name, Description: payload.Description,
				StartDate: payload.StartDate, EndDate: payload.EndDate, OwnerID: payload.OwnerID}
			p := f.Projects[i]
			return &p, nil
		}
	}
	return nil, Err(http.StatusNotFound, "Project not found")
}

// DeleteProject cascades to the project's tasks, as the real backend does.
func (f *Fake) DeleteProject(ctx context.Context, token string, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProject", token)
	if f.ErrMutation != nil {
		return f.ErrMutation
	}
	for i := range f.Projects {
		if f.Projects[i].ID.Equal(id) {
			f.Projects = append(f.Projects[:i], f.Projects[i+1:]...)
			kept := f.Tasks[:0]
			for _, t := range f.Tasks {
				if !t.ProjectID.Equal(id) {
					kept = append(kept, t)
				}
			}
			f.Tasks = kept
			return nil
		}
	}
	return Err(http.StatusNotFound, "Project not found")
}

func (f *Fake) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks", token)
	if f.ErrListTasks != nil {
		return nil, f.ErrListTasks
	}
	return append([]models.Task(nil), f.Tasks...), nil
}

func (f *Fake) CreateTask(ctx context.Context, token string, payload models.TaskPayload) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask", token)
	if f.ErrMutation != nil {
		return nil, f.ErrMutation
	}
	t := models.Task{ID: f.newID(), Description: payload.Description, DueDate: payload.DueDate,
		Status: payload.Status, OwnerID: payload.OwnerID, ProjectID: payload.ProjectID}
	f.Tasks = append(f.Tasks, t)
	return &t, nil
}

func (f *Fake) UpdateTask(ctx context.Context, token string, id models.ID, payload models.TaskPayload) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask", token)
	if f.ErrMutation != nil {
		return nil, f.ErrMutation
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID.Equal(id) {
			f.Tasks[i] = models.Task{ID: id, Description: payload.Description, DueDate: payload.DueDate,
				Status: payload.Status, OwnerID: payload.OwnerID, ProjectID: payload.ProjectID}
			t := f.Tasks[i]
			return &t, nil
		}
	}
	return nil, Err(http.StatusNotFound, "Task not found")
}

func (f *Fake) DeleteTask(ctx context.Context, token string, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask", token)
	if f.ErrMutation != nil {
		return f.ErrMutation
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID.Equal(id) {
			f.Tasks = append(f.Tasks[:i], f.Tasks[i+1:]...)
			return nil
		}
	}
	return Err(http.StatusNotFound, "Task not found")
}

func (f *Fake) HealthCheck(ctx context.Context) error {
	return nil
}
