package views

import (
	"time"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/policy"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
)

// Option 下拉框选项
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// TaskRow 任务表格的一行
type TaskRow struct {
	Index       int         `json:"index"`
	Task        models.Task `json:"task"`
	ProjectName string      `json:"project_name"`
	OwnerName   string      `json:"owner_name"`
	Overdue     bool        `json:"overdue"`
	CanEdit     bool        `json:"can_edit"`
	StatusOnly  bool        `json:"status_only"`
	CanDelete   bool        `json:"can_delete"`
}

// ProjectRow 项目表格的一行
type ProjectRow struct {
	Index     int            `json:"index"`
	Project   models.Project `json:"project"`
	OwnerName string         `json:"owner_name"`
	TaskCount int            `json:"task_count"`
}

// UserRow 用户表格的一行
type UserRow struct {
	Index    int         `json:"index"`
	User     models.User `json:"user"`
	RoleName string      `json:"role_name"`
}

// TaskFilter holds the project and owner selections of the task list. Empty means all.
type TaskFilter struct {
	Project models.ID `json:"project,omitempty"`
	Owner   models.ID `json:"owner,omitempty"`
}

// Dashboard 仪表盘数据
type Dashboard struct {
	TotalProjects int            `json:"total_projects"`
	TotalUsers    int            `json:"total_users"`
	TotalTasks    int            `json:"total_tasks"`
	Statuses      []StatusCount  `json:"statuses"`
	PerProject    []ProjectCount `json:"per_project"`
	YourTasks     []TaskRow      `json:"your_tasks"`
	Overdue       []TaskRow      `json:"overdue"`
}

// TaskList 任务页数据
type TaskList struct {
	Rows      []TaskRow  `json:"rows"`
	Filter    TaskFilter `json:"filter"`
	Projects  []Option   `json:"projects"`
	Owners    []Option   `json:"owners"`
	Statuses  []string   `json:"statuses"`
	CanCreate bool       `json:"can_create"`
}

// ProjectList 项目页数据
type ProjectList struct {
	Rows      []ProjectRow `json:"rows"`
	Owners    []Option     `json:"owners"`
	CanManage bool         `json:"can_manage"`
}

// UserList 用户页数据
type UserList struct {
	Rows  []UserRow `json:"rows"`
	Roles []Option  `json:"roles"`
}

// BuildDashboard computes the dashboard over the tasks the principal may see.
func BuildDashboard(p *models.Principal, snap store.Snapshot, now time.Time) Dashboard {
	visible := policy.VisibleTasks(p, snap.Tasks)
	n := newNames(snap)
	return Dashboard{
		TotalProjects: len(snap.Projects),
		TotalUsers:    len(snap.Users),
		TotalTasks:    len(visible),
		Statuses:      StatusHistogram(visible),
		PerProject:    TasksPerProject(snap.Projects, visible),
		YourTasks:     taskRows(p, YourTasks(p, visible), n, now),
		Overdue:       taskRows(p, OverdueTasks(visible, now), n, now),
	}
}

// FilterTasks keeps the tasks matching the selected project and owner.
func FilterTasks(tasks []models.Task, f TaskFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if !f.Project.IsZero() && !t.ProjectID.Equal(f.Project) {
			continue
		}
		if !f.Owner.IsZero() && !t.OwnerID.Equal(f.Owner) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// BuildTaskList 构建任务列表：先按权限过滤，再按筛选条件过滤
func BuildTaskList(p *models.Principal, snap store.Snapshot, f TaskFilter, now time.Time) TaskList {
	rows := FilterTasks(policy.VisibleTasks(p, snap.Tasks), f)

	projects := make([]Option, len(snap.Projects))
	for i, pr := range snap.Projects {
		projects[i] = Option{Value: pr.ID.String(), Label: pr.Name, Selected: pr.ID.Equal(f.Project)}
	}
	statuses := make([]string, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		statuses[i] = string(s)
	}

	return TaskList{
		Rows:      taskRows(p, rows, newNames(snap), now),
		Filter:    f,
		Projects:  projects,
		Owners:    userOptions(snap.Users, f.Owner),
		Statuses:  statuses,
		CanCreate: policy.CanCreateTask(p),
	}
}

// BuildProjectList 构建项目列表
// Task counts only include tasks the principal may see.
func BuildProjectList(p *models.Principal, snap store.Snapshot) ProjectList {
	n := newNames(snap)
	visible := policy.VisibleTasks(p, snap.Tasks)
	rows := make([]ProjectRow, len(snap.Projects))
	for i, pr := range snap.Projects {
		count := 0
		for _, t := range visible {
			if t.ProjectID.Equal(pr.ID) {
				count++
			}
		}
		rows[i] = ProjectRow{Index: i + 1, Project: pr, OwnerName: n.user(pr.OwnerID), TaskCount: count}
	}
	return ProjectList{
		Rows:      rows,
		Owners:    userOptions(snap.Users, ""),
		CanManage: policy.CanManageProjects(p),
	}
}

// BuildUserList 构建用户列表
func BuildUserList(snap store.Snapshot) UserList {
	n := newNames(snap)
	rows := make([]UserRow, len(snap.Users))
	for i, u := range snap.Users {
		rows[i] = UserRow{Index: i + 1, User: u, RoleName: n.role(u.RoleID)}
	}
	roles := make([]Option, len(snap.Roles))
	for i, r := range snap.Roles {
		roles[i] = Option{Value: r.ID.String(), Label: r.Name}
	}
	return UserList{Rows: rows, Roles: roles}
}

func taskRows(p *models.Principal, tasks []models.Task, n names, now time.Time) []TaskRow {
	rows := make([]TaskRow, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		rows[i] = TaskRow{
			Index:       i + 1,
			Task:        *t,
			ProjectName: n.project(t.ProjectID),
			OwnerName:   n.user(t.OwnerID),
			Overdue:     IsOverdue(*t, now),
			CanEdit:     policy.CanEditTask(p, t),
			StatusOnly:  policy.StatusOnly(p, t),
			CanDelete:   policy.CanDeleteTask(p, t),
		}
	}
	return rows
}

func userOptions(users []models.User, selected models.ID) []Option {
	out := make([]Option, len(users))
	for i, u := range users {
		out[i] = Option{Value: u.ID.String(), Label: u.Name, Selected: u.ID.Equal(selected)}
	}
	return out
}

// names resolves ids to display names
type names struct {
	users    map[string]string
	projects map[string]string
	roles    map[string]string
}

func newNames(snap store.Snapshot) names {
	n := names{
		users:    make(map[string]string, len(snap.Users)),
		projects: make(map[string]string, len(snap.Projects)),
		roles:    make(map[string]string, len(snap.Roles)),
	}
	for _, u := range snap.Users {
		n.users[u.ID.String()] = u.Name
	}
	for _, p := range snap.Projects {
		n.projects[p.ID.String()] = p.Name
	}
	for _, r := range snap.Roles {
		n.roles[r.ID.String()] = r.Name
	}
	return n
}

func lookup(m map[string]string, id models.ID) string {
	if id.IsZero() {
		return NotAvailable
	}
	if name, ok := m[id.String()]; ok {
		return name
	}
	return NotAvailable
}

func (n names) user(id models.ID) string    { return lookup(n.users, id) }
func (n names) project(id models.ID) string { return lookup(n.projects, id) }
func (n names) role(id models.ID) string    { return lookup(n.roles, id) }
