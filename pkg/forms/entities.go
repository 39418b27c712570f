package forms

import (
	"net/url"
	"strings"
	"time"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// 删除确认提示
const (
	DeleteTaskMessage    = "Are you sure you want to delete this task?"
	DeleteProjectMessage = "All the tasks associated with this project will also be deleted. Are you sure you want to continue?"
	DeleteUserMessage    = "Are you sure you want to delete this user?"
)

// DefaultUserRoleID is the role preselected when creating a user.
const DefaultUserRoleID = "2"

// ================= Task =================

// TaskForm 任务表单字段
type TaskForm struct {
	Description string
	DueDate     string
	Status      string
	Owner       string
	ProjectID   string
}

// DefaultTaskForm 创建任务的默认值
func DefaultTaskForm() TaskForm {
	return TaskForm{Status: string(models.StatusNew)}
}

// TaskFormFrom 由已有任务初始化表单
func TaskFormFrom(t models.Task) TaskForm {
	return TaskForm{
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		Owner:       t.OwnerID.String(),
		ProjectID:   t.ProjectID.String(),
	}
}

// ParseTaskForm 解析提交的表单
func ParseTaskForm(v url.Values) TaskForm {
	return TaskForm{
		Description: strings.TrimSpace(v.Get("description")),
		DueDate:     strings.TrimSpace(v.Get("due_date")),
		Status:      strings.TrimSpace(v.Get("status")),
		Owner:       strings.TrimSpace(v.Get("owner")),
		ProjectID:   strings.TrimSpace(v.Get("project_id")),
	}
}

// Validate 返回字段错误，没有错误时返回 nil
func (f TaskForm) Validate() map[string]string {
	errs := map[string]string{}
	if f.Description == "" {
		errs["description"] = "Description is required"
	}
	if !models.TaskStatus(f.Status).Valid() {
		errs["status"] = "Status must be one of the listed values"
	}
	if f.Owner == "" {
		errs["owner"] = "Select a user"
	}
	if f.ProjectID == "" {
		errs["project_id"] = "Select a project"
	}
	if f.DueDate != "" {
		if _, err := models.ParseDate(f.DueDate); err != nil {
			errs["due_date"] = "Due date must be YYYY-MM-DD"
		}
	}
	return nilIfEmpty(errs)
}

// ValidateStatus 只校验状态字段（任务所有者只能修改状态）
func (f TaskForm) ValidateStatus() map[string]string {
	if !models.TaskStatus(f.Status).Valid() {
		return map[string]string{"status": "Status must be one of the listed values"}
	}
	return nil
}

// Payload builds the API body; owner_id comes from the form's owner field.
func (f TaskForm) Payload() models.TaskPayload {
	return models.TaskPayload{
		Description: f.Description,
		DueDate:     f.DueDate,
		Status:      models.TaskStatus(f.Status),
		OwnerID:     models.ID(f.Owner),
		ProjectID:   models.ID(f.ProjectID),
	}
}

// ================= Project =================

// ProjectForm 项目表单字段
type ProjectForm struct {
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Owner       string
}

// ProjectFormFrom 由已有项目初始化表单
func ProjectFormFrom(p models.Project) ProjectForm {
	return ProjectForm{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Owner:       p.OwnerID.String(),
	}
}

// ParseProjectForm 解析提交的表单
func ParseProjectForm(v url.Values) ProjectForm {
	return ProjectForm{
		Name:        strings.TrimSpace(v.Get("name")),
		Description: strings.TrimSpace(v.Get("description")),
		StartDate:   strings.TrimSpace(v.Get("start_date")),
		EndDate:     strings.TrimSpace(v.Get("end_date")),
		Owner:       strings.TrimSpace(v.Get("owner")),
	}
}

// Validate 返回字段错误，没有错误时返回 nil
func (f ProjectForm) Validate() map[string]string {
	errs := map[string]string{}
	if f.Name == "" {
		errs["name"] = "Project name is required"
	}
	if f.Owner == "" {
		errs["owner"] = "Select a user"
	}
	start, startErr := parseOptionalDate(f.StartDate)
	if startErr != nil {
		errs["start_date"] = "Start date must be YYYY-MM-DD"
	}
	end, endErr := parseOptionalDate(f.EndDate)
	if endErr != nil {
		errs["end_date"] = "End date must be YYYY-MM-DD"
	}
	if startErr == nil && endErr == nil && !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs["end_date"] = "End date is before the start date"
	}
	return nilIfEmpty(errs)
}

// Payload 构造请求体
func (f ProjectForm) Payload() models.ProjectPayload {
	return models.ProjectPayload{
		Name:        f.Name,
		Description: f.Description,
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		OwnerID:     models.ID(f.Owner),
	}
}

// ================= User =================

// UserForm 用户表单字段
type UserForm struct {
	Name     string
	Email    string
	Password string
	RoleID   string
}

// DefaultUserForm 创建用户的默认值
func DefaultUserForm() UserForm {
	return UserForm{RoleID: DefaultUserRoleID}
}

// UserFormFrom initializes an edit form; the password is never read back.
func UserFormFrom(u models.User) UserForm {
	return UserForm{Name: u.Name, Email: u.Email, RoleID: u.RoleID.String()}
}

// ParseUserForm 解析提交的表单
func ParseUserForm(v url.Values) UserForm {
	return UserForm{
		Name:     strings.TrimSpace(v.Get("name")),
		Email:    strings.TrimSpace(v.Get("email")),
		Password: v.Get("password"),
		RoleID:   strings.TrimSpace(v.Get("role_id")),
	}
}

// Validate 创建时密码必填，编辑时留空表示不修改
func (f UserForm) Validate(mode Mode) map[string]string {
	errs := map[string]string{}
	if f.Name == "" {
		errs["name"] = "Name is required"
	}
	if f.Email == "" || !strings.Contains(f.Email, "@") {
		errs["email"] = "A valid email is required"
	}
	if mode == ModeCreate && f.Password == "" {
		errs["password"] = "Password is required"
	}
	if f.RoleID == "" {
		errs["role_id"] = "Select a role"
	}
	return nilIfEmpty(errs)
}

// Payload 构造请求体，空密码不会发送
func (f UserForm) Payload() models.UserPayload {
	return models.UserPayload{
		Name:     f.Name,
		Email:    f.Email,
		Password: f.Password,
		RoleID:   models.ID(f.RoleID),
	}
}

// WithoutPassword 渲染前清除密码，避免回显
func (f UserForm) WithoutPassword() UserForm {
	f.Password = ""
	return f
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return models.ParseDate(s)
}

func nilIfEmpty(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
