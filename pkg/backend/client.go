package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// Client 后端 REST API 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建后端客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	// 确保URL格式正确
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL != "" && !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL 返回后端基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// makeRequest 发送HTTP请求到后端，out 不为 nil 时解析响应体
func (c *Client) makeRequest(ctx context.Context, method, endpoint, token string, body, out interface{}) error {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// 设置请求头
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func recordPath(collection string, id models.ID) string {
	return "/" + collection + "/" + url.PathEscape(id.String())
}

// ================= Auth =================

// Login POST /users/login/
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.makeRequest(ctx, http.MethodPost, "/users/login/", "", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRole GET /users/get_role，使用身份提供方签发的 id token
func (c *Client) GetRole(ctx context.Context, idToken string) (*models.RoleLookupResponse, error) {
	var resp models.RoleLookupResponse
	if err := c.makeRequest(ctx, http.MethodGet, "/users/get_role", idToken, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ================= Users & Roles =================

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := c.makeRequest(ctx, http.MethodGet, "/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, token string, payload models.UserPayload) (*models.User, error) {
	var user models.User
	if err := c.makeRequest(ctx, http.MethodPost, "/users", token, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id models.ID, payload models.UserPayload) (*models.User, error) {
	var user models.User
	if err := c.makeRequest(ctx, http.MethodPut, recordPath("users", id), token, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id models.ID) error {
	return c.makeRequest(ctx, http.MethodDelete, recordPath("users", id), token, nil, nil)
}

// ListRoles GET /roles
func (c *Client) ListRoles(ctx context.Context, token string) ([]models.Role, error) {
	var roles []models.Role
	if err := c.makeRequest(ctx, http.MethodGet, "/roles", token, nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// ================= Projects =================

func (c *Client) ListProjects(ctx context.Context, token string) ([]models.Project, error) {
	var projects []models.Project
	if err := c.makeRequest(ctx, http.MethodGet, "/projects", token, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, token string, payload models.ProjectPayload) (*models.Project, error) {
	var project models.Project
	if err := c.makeRequest(ctx, http.MethodPost, "/projects", token, payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, token string, id models.ID, payload models.ProjectPayload) (*models.Project, error) {
	var project models.Project
	if err := c.makeRequest(ctx, http.MethodPut, recordPath("projects", id), token, payload, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject 后端会级联删除该项目下的任务
func (c *Client) DeleteProject(ctx context.Context, token string, id models.ID) error {
	return c.makeRequest(ctx, http.MethodDelete, recordPath("projects", id), token, nil, nil)
}

// ================= Tasks =================

func (c *Client) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.makeRequest(ctx, http.MethodGet, "/tasks", token, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, payload models.TaskPayload) (*models.Task, error) {
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodPost, "/tasks", token, payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, token string, id models.ID, payload models.TaskPayload) (*models.Task, error) {
	var task models.Task
	if err := c.makeRequest(ctx, http.MethodPut, recordPath("tasks", id), token, payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, token string, id models.ID) error {
	return c.makeRequest(ctx, http.MethodDelete, recordPath("tasks", id), token, nil, nil)
}

// HealthCheck 检查后端是否可达（任何非 5xx 响应都视为可达）
func (c *Client) HealthCheck(ctx context.Context) error {
	err := c.makeRequest(ctx, http.MethodGet, "/", "", nil, nil)
	if err == nil {
		return nil
	}
	if status := StatusOf(err); status > 0 && status < 500 {
		return nil
	}
	return err
}
