package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestNewClient_NormalizesBaseURL(t *testing.T) {
	c := NewClient(" api.example.com/ ", 0)
	assert.Equal(t, "https://api.example.com", c.BaseURL())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/login/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ann@example.com", body.Email)
		assert.Equal(t, "pw", body.Password)

		w.Write([]byte(`{"id":7,"name":"Ann","email":"ann@example.com","role":"user","token":"tok"}`))
	})

	resp, err := c.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), resp.ID)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.Equal(t, "tok", resp.BearerToken())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid email or password"}`))
	})

	_, err := c.Login(context.Background(), "ann@example.com", "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Invalid email or password", DetailOf(err))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestGetRole_SendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/get_role", r.URL.Path)
		assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"role":"task_creator","id":12}`))
	})

	resp, err := c.GetRole(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "task_creator", resp.Role)
	assert.Equal(t, models.ID("12"), resp.ID)
}

func TestListTasks_CarriesToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":1,"description":"a","status":"new","owner_id":7,"project_id":3}]`))
	})

	tasks, err := c.ListTasks(context.Background(), "session-token")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusNew, tasks[0].Status)
	assert.Equal(t, models.ID("3"), tasks[0].ProjectID)
}

func TestUpdateTask_PathAndPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/42", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"description":"d","due_date":"2024-01-02","status":"blocked","owner_id":7,"project_id":3}`, string(raw))
		w.Write([]byte(`{"id":42,"description":"d","due_date":"2024-01-02","status":"blocked","owner_id":7,"project_id":3}`))
	})

	task, err := c.UpdateTask(context.Background(), "", "42", models.TaskPayload{
		Description: "d", DueDate: "2024-01-02", Status: models.StatusBlocked, OwnerID: "7", ProjectID: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusBlocked, task.Status)
}

func TestDeleteProject_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/projects/3", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"Project has running tasks"}`))
	})

	err := c.DeleteProject(context.Background(), "", "3")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Project has running tasks", DetailOf(err))
}

func TestDeleteUser_EmptyBodySuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.DeleteUser(context.Background(), "", "5"))
}

func TestMakeRequest_InvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err := c.ListProjects(context.Background(), "")
	require.Error(t, err)
	assert.Empty(t, DetailOf(err))
}

func TestHealthCheck(t *testing.T) {
	notFound := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, notFound.HealthCheck(context.Background()))

	broken := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	assert.Error(t, broken.HealthCheck(context.Background()))
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"nope"}`, "nope"},
		{"message", `{"message":"bad"}`, "bad"},
		{"envelope", `{"success":false,"error":{"code":"X","message":"boom"}}`, "boom"},
		{"validation list", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{"not json", `<html>`, ""},
		{"no known key", `{"foo":"bar"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDetail([]byte(tt.body)))
		})
	}
}
