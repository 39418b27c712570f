package backend

import (
	"context"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// API 定义后端 REST 接口
// token 为会话保存的 bearer 令牌，可以为空（早期后端版本不校验）。
type API interface {
	// 认证
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	GetRole(ctx context.Context, idToken string) (*models.RoleLookupResponse, error)

	// 用户与角色
	ListUsers(ctx context.Context, token string) ([]models.User, error)
	CreateUser(ctx context.Context, token string, payload models.UserPayload) (*models.User, error)
	UpdateUser(ctx context.Context, token string, id models.ID, payload models.UserPayload) (*models.User, error)
	DeleteUser(ctx context.Context, token string, id models.ID) error
	ListRoles(ctx context.Context, token string) ([]models.Role, error)

	// 项目
	ListProjects(ctx context.Context, token string) ([]models.Project, error)
	CreateProject(ctx context.Context, token string, payload models.ProjectPayload) (*models.Project, error)
	UpdateProject(ctx context.Context, token string, id models.ID, payload models.ProjectPayload) (*models.Project, error)
	DeleteProject(ctx context.Context, token string, id models.ID) error

	// 任务
	ListTasks(ctx context.Context, token string) ([]models.Task, error)
	CreateTask(ctx context.Context, token string, payload models.TaskPayload) (*models.Task, error)
	UpdateTask(ctx context.Context, token string, id models.ID, payload models.TaskPayload) (*models.Task, error)
	DeleteTask(ctx context.Context, token string, id models.ID) error

	// 健康检查
	HealthCheck(ctx context.Context) error
}
