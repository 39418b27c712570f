// Package policy decides what a principal may see and do.
//
// Every function here is pure: the inputs are the principal and, where ownership
// matters, the target task. Handlers and views consult this package instead of
// comparing role strings themselves.
package policy

import "github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"

// Action 可授权的操作
type Action string

const (
	ViewAllTasks   Action = "view_all_tasks"
	ViewTask       Action = "view_task"
	ViewProjects   Action = "view_projects"
	ManageProjects Action = "manage_projects"
	CreateTask     Action = "create_task"
	EditTaskAll    Action = "edit_task_all"
	EditTaskStatus Action = "edit_task_status"
	DeleteTask     Action = "delete_task"
	ManageUsers    Action = "manage_users"
)

// Field 任务表单字段
type Field string

const (
	FieldDescription Field = "description"
	FieldDueDate     Field = "due_date"
	FieldStatus      Field = "status"
	FieldOwner       Field = "owner"
	FieldProject     Field = "project_id"
)

// AllTaskFields is the full editable field set of a task form.
var AllTaskFields = []Field{FieldDescription, FieldDueDate, FieldStatus, FieldOwner, FieldProject}

func roleOf(p *models.Principal) models.RoleName {
	if p == nil {
		return models.RoleNone
	}
	return p.Role
}

func isTaskManager(p *models.Principal) bool {
	r := roleOf(p)
	return r == models.RoleAdmin || r == models.RoleTaskCreator
}

// IsOwner 任务是否属于该主体
func IsOwner(p *models.Principal, t *models.Task) bool {
	if p == nil || t == nil || p.ID.IsZero() {
		return false
	}
	return t.OwnerID.Equal(p.ID)
}

// CanViewAllTasks admin 与 task_creator 可以查看全部任务
func CanViewAllTasks(p *models.Principal) bool {
	return isTaskManager(p)
}

// CanViewTask 普通用户只能查看自己的任务
func CanViewTask(p *models.Principal, t *models.Task) bool {
	if CanViewAllTasks(p) {
		return true
	}
	return roleOf(p) == models.RoleUser && IsOwner(p, t)
}

// CanViewProjects 所有已知角色都可以查看项目列表
func CanViewProjects(p *models.Principal) bool {
	return roleOf(p).Valid()
}

// CanManageProjects 仅 admin 可以创建/编辑/删除项目
func CanManageProjects(p *models.Principal) bool {
	return roleOf(p) == models.RoleAdmin
}

// CanCreateTask admin 与 task_creator 可以创建任务
func CanCreateTask(p *models.Principal) bool {
	return isTaskManager(p)
}

// CanEditTaskAllFields admin 与 task_creator 可以编辑任务的全部字段
func CanEditTaskAllFields(p *models.Principal, t *models.Task) bool {
	return isTaskManager(p)
}

// CanEditTaskStatus 任务管理者或任务所有者（user 角色）可以修改状态
func CanEditTaskStatus(p *models.Principal, t *models.Task) bool {
	if isTaskManager(p) {
		return true
	}
	return roleOf(p) == models.RoleUser && IsOwner(p, t)
}

// CanEditTask reports whether any edit affordance is offered for the task.
func CanEditTask(p *models.Principal, t *models.Task) bool {
	return CanEditTaskAllFields(p, t) || CanEditTaskStatus(p, t)
}

// CanDeleteTask 仅 admin 可以删除任务
func CanDeleteTask(p *models.Principal, t *models.Task) bool {
	return roleOf(p) == models.RoleAdmin
}

// CanManageUsers 仅 admin 可以查看/管理用户与角色
func CanManageUsers(p *models.Principal) bool {
	return roleOf(p) == models.RoleAdmin
}

// EditableTaskFields returns the task form fields the principal may change.
// An empty result means no edit affordance at all.
func EditableTaskFields(p *models.Principal, t *models.Task) []Field {
	if CanEditTaskAllFields(p, t) {
		return append([]Field(nil), AllTaskFields...)
	}
	if CanEditTaskStatus(p, t) {
		return []Field{FieldStatus}
	}
	return nil
}

// StatusOnly 是否只允许修改状态字段
func StatusOnly(p *models.Principal, t *models.Task) bool {
	return !CanEditTaskAllFields(p, t) && CanEditTaskStatus(p, t)
}

// VisibleTasks 按角色过滤任务列表，保持原有顺序
func VisibleTasks(p *models.Principal, tasks []models.Task) []models.Task {
	if CanViewAllTasks(p) {
		return append([]models.Task(nil), tasks...)
	}
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if CanViewTask(p, &tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Allowed is the table form of the policy. The task argument is consulted only by
// the task-scoped actions and may be nil for the others.
func Allowed(p *models.Principal, action Action, t *models.Task) bool {
	switch action {
	case ViewAllTasks:
		return CanViewAllTasks(p)
	case ViewTask:
		return CanViewTask(p, t)
	case ViewProjects:
		return CanViewProjects(p)
	case ManageProjects:
		return CanManageProjects(p)
	case CreateTask:
		return CanCreateTask(p)
	case EditTaskAll:
		return CanEditTaskAllFields(p, t)
	case EditTaskStatus:
		return CanEditTaskStatus(p, t)
	case DeleteTask:
		return CanDeleteTask(p, t)
	case ManageUsers:
		return CanManageUsers(p)
	}
	return false
}
