package templates

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/views"
)

var admin = &models.Principal{ID: "1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}

func snapshot() store.Snapshot {
	return store.Snapshot{
		Users:    []models.User{{ID: "1", Name: "Ada", RoleID: "1"}, {ID: "7", Name: "Sam <script>", RoleID: "2"}},
		Projects: []models.Project{{ID: "3", Name: "Apollo", OwnerID: "1"}},
		Tasks:    []models.Task{{ID: "101", Description: "ship it", DueDate: "2024-01-01", Status: models.StatusNew, OwnerID: "7", ProjectID: "3"}},
		Roles:    []models.Role{{ID: "1", Name: "admin"}, {ID: "2", Name: "user"}},
	}
}

func render(t *testing.T, name string, data PageData) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data))
	return buf.String()
}

func TestRender_Login(t *testing.T) {
	out := render(t, PageLogin, PageData{Title: "Login", Body: LoginBody{Error: "Invalid credentials", Email: "a@b.c"}})
	assert.Contains(t, out, "Invalid credentials")
	assert.Contains(t, out, `value="a@b.c"`)
	assert.NotContains(t, out, "Sign in with Google")
	assert.NotContains(t, out, "<nav>", "no navigation before login")
}

func TestRender_Dashboard(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	out := render(t, PageDashboard, PageData{
		Title: "Dashboard", Active: PageDashboard, Principal: admin, ShowUsers: true,
		Notices: []store.Notice{{Level: store.NoticeError, Message: "Failed to delete task"}},
		Body:    views.BuildDashboard(admin, snapshot(), now),
	})
	assert.Contains(t, out, "Total Projects")
	assert.Contains(t, out, "Failed to delete task")
	assert.Contains(t, out, `href="/users"`)
	assert.Contains(t, out, "Overdue Tasks")
	assert.Contains(t, out, "ship it")
}

func TestRender_TasksEscapesAndShowsForm(t *testing.T) {
	var page forms.Page[forms.TaskForm]
	page.OpenEdit("101", forms.TaskForm{Description: "ship it", Status: "new", Owner: "7", ProjectID: "3"})
	page.Edit.Fail(map[string]string{"description": "Description is required"})

	out := render(t, PageTasks, PageData{
		Title: "Tasks", Active: PageTasks, Principal: admin,
		Body: TasksBody{
			List:  views.BuildTaskList(admin, snapshot(), views.TaskFilter{}, time.Now()),
			Form:  page,
			Query: "project=3",
		},
	})
	assert.Contains(t, out, "Edit Task")
	assert.Contains(t, out, "Description is required")
	assert.Contains(t, out, "Sam &lt;script&gt;")
	assert.NotContains(t, out, "Sam <script>")
	assert.Contains(t, out, "/tasks/save?project=3")
	assert.Contains(t, out, "/tasks/101/delete?project=3")
}

func TestRender_ProjectsDeleteConfirmation(t *testing.T) {
	var page forms.Page[forms.ProjectForm]
	page.RequestDelete("3", forms.DeleteProjectMessage)

	out := render(t, PageProjects, PageData{
		Title: "Projects", Active: PageProjects, Principal: admin,
		Body: ProjectsBody{List: views.BuildProjectList(admin, snapshot()), Form: page},
	})
	assert.Contains(t, out, "All the tasks associated with this project will also be deleted.")
	assert.Contains(t, out, "/projects/3/delete/confirm")
}

func TestRender_Users(t *testing.T) {
	var page forms.Page[forms.UserForm]
	page.OpenCreate(forms.DefaultUserForm())

	out := render(t, PageUsers, PageData{
		Title: "Users", Active: PageUsers, Principal: admin, ShowUsers: true,
		Body: UsersBody{List: views.BuildUserList(snapshot()), Form: page},
	})
	assert.Contains(t, out, "Create User")
	assert.Contains(t, out, `<option value="2" selected>user</option>`)
}

func TestRender_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", PageData{}))
}
