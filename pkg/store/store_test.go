package store

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/backend/backendtest"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

func seededFake() *backendtest.Fake {
	f := backendtest.New()
	f.Users = []models.User{{ID: "1", Name: "Ada", RoleID: "1"}, {ID: "7", Name: "Sam", RoleID: "3"}}
	f.Projects = []models.Project{{ID: "3", Name: "Apollo", OwnerID: "1"}, {ID: "4", Name: "Gemini", OwnerID: "1"}}
	f.Tasks = []models.Task{
		{ID: "101", Description: "a", Status: models.StatusNew, OwnerID: "7", ProjectID: "3"},
		{ID: "102", Description: "b", Status: models.StatusBlocked, OwnerID: "1", ProjectID: "3"},
		{ID: "103", Description: "c", Status: models.StatusCompleted, OwnerID: "7", ProjectID: "4"},
	}
	f.Roles = []models.Role{{ID: "1", Name: "admin"}, {ID: "2", Name: "user"}, {ID: "3", Name: "task_creator"}}
	return f
}

func loaded(t *testing.T, f *backendtest.Fake) *Workspace {
	t.Helper()
	w := NewWorkspace()
	require.NoError(t, w.Load(context.Background(), f, "tok"))
	return w
}

func TestReconcilers(t *testing.T) {
	list := []models.Task{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	out := Appended(list, models.Task{ID: "4"})
	assert.Len(t, out, 4)
	assert.Len(t, list, 3, "input is not modified")

	out = Appended(list, models.Task{ID: "2", Description: "dup"})
	assert.Len(t, out, 3, "an existing id is replaced, not duplicated")
	assert.Equal(t, "dup", out[1].Description)

	out, ok := Replaced(list, models.Task{ID: "2", Description: "x"})
	require.True(t, ok)
	assert.Equal(t, []models.ID{"1", "2", "3"}, ids(out))
	assert.Equal(t, "x", out[1].Description)
	assert.Equal(t, "", list[1].Description)

	_, ok = Replaced(list, models.Task{ID: "9"})
	assert.False(t, ok)

	out, ok = Removed(list, "2")
	require.True(t, ok)
	assert.Equal(t, []models.ID{"1", "3"}, ids(out))

	_, ok = Removed(list, "")
	assert.False(t, ok)

	found, ok := Find(list, "3")
	assert.True(t, ok)
	assert.Equal(t, models.ID("3"), found.ID)
}

func ids(tasks []models.Task) []models.ID {
	out := make([]models.ID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestLoad_PassesTokenAndFillsCollections(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)

	snap := w.Snapshot()
	assert.Len(t, snap.Users, 2)
	assert.Len(t, snap.Projects, 2)
	assert.Len(t, snap.Tasks, 3)
	assert.True(t, w.Loaded())
	for _, m := range []string{"ListUsers", "ListProjects", "ListTasks"} {
		assert.Equal(t, "tok", f.Tokens[m])
	}
}

func TestLoad_FailuresAreIndependent(t *testing.T) {
	f := seededFake()
	f.ErrListProjects = errors.New("boom")
	w := NewWorkspace()

	err := w.Load(context.Background(), f, "tok")
	require.Error(t, err)

	snap := w.Snapshot()
	assert.Len(t, snap.Users, 2)
	assert.Len(t, snap.Tasks, 3)
	assert.Empty(t, snap.Projects)
	assert.False(t, snap.ProjectsLoaded)
	assert.Equal(t, 1, f.CallCount("ListProjects"), "no automatic retry")
}

func TestEnsureRoles_FetchesOnce(t *testing.T) {
	f := seededFake()
	w := NewWorkspace()
	require.NoError(t, w.EnsureRoles(context.Background(), f, "tok"))
	require.NoError(t, w.EnsureRoles(context.Background(), f, "tok"))
	assert.Equal(t, 1, f.CallCount("ListRoles"))
	assert.Len(t, w.Snapshot().Roles, 3)
}

func TestCreateTask_AppendsServerRecordOnce(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)

	created, err := w.CreateTask(context.Background(), f, "tok", models.TaskPayload{Description: "new one", Status: models.StatusNew, OwnerID: "7", ProjectID: "3"})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	tasks := w.Snapshot().Tasks
	require.Len(t, tasks, 4)
	count := 0
	for _, task := range tasks {
		if task.ID.Equal(created.ID) {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, created.ID, tasks[3].ID)
}

func TestUpdateTask_PreservesOrder(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)

	_, err := w.UpdateTask(context.Background(), f, "tok", "102", models.TaskPayload{Description: "b2", Status: models.StatusCompleted, OwnerID: "1", ProjectID: "3"})
	require.NoError(t, err)

	tasks := w.Snapshot().Tasks
	assert.Equal(t, []models.ID{"101", "102", "103"}, ids(tasks))
	assert.Equal(t, models.StatusCompleted, tasks[1].Status)
}

func TestFailedDelete_LeavesCacheAndQueuesDetail(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)
	before := w.Snapshot().Tasks

	f.ErrMutation = backendtest.Err(http.StatusBadRequest, "Task is locked")
	err := w.DeleteTask(context.Background(), f, "tok", "101")
	require.Error(t, err)

	assert.Equal(t, before, w.Snapshot().Tasks)
	notices := w.TakeNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Level)
	assert.Equal(t, "Task is locked", notices[0].Message)
	assert.Empty(t, w.TakeNotices(), "notices are shown once")
}

func TestFailedUpdate_GenericNotice(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)

	f.ErrMutation = errors.New("connection refused")
	_, err := w.UpdateProject(context.Background(), f, "tok", "3", models.ProjectPayload{Name: "x"})
	require.Error(t, err)

	notices := w.TakeNotices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Failed to update project. Please try again.", notices[0].Message)
	assert.Equal(t, "Apollo", w.Snapshot().Projects[0].Name)
}

func TestUnauthorizedMutation_NoNotice(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)

	f.ErrMutation = backendtest.Unauthorized()
	_, err := w.CreateUser(context.Background(), f, "tok", models.UserPayload{Name: "x"})
	require.Error(t, err)
	assert.Empty(t, w.TakeNotices())
}

func TestDeleteProject_KeepsCachedTasks(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)

	require.NoError(t, w.DeleteProject(context.Background(), f, "tok", "3"))
	snap := w.Snapshot()
	assert.Len(t, snap.Projects, 1)
	assert.Equal(t, []models.ID{"101", "102", "103"}, ids(snap.Tasks))

	require.NoError(t, w.Load(context.Background(), f, "tok"))
	assert.Equal(t, []models.ID{"103"}, ids(w.Snapshot().Tasks))
}

func TestUserMutations(t *testing.T) {
	f := seededFake()
	w := loaded(t, f)
	ctx := context.Background()

	u, err := w.CreateUser(ctx, f, "tok", models.UserPayload{Name: "Kim", Email: "kim@example.com", Password: "pw", RoleID: "2"})
	require.NoError(t, err)
	_, err = w.UpdateUser(ctx, f, "tok", u.ID, models.UserPayload{Name: "Kimberly", Email: "kim@example.com", RoleID: "2"})
	require.NoError(t, err)
	users := w.Snapshot().Users
	require.Len(t, users, 3)
	assert.Equal(t, "Kimberly", users[2].Name)

	require.NoError(t, w.DeleteUser(ctx, f, "tok", u.ID))
	assert.Len(t, w.Snapshot().Users, 2)
}

// blockingTasks holds ListTasks until release is closed.
type blockingTasks struct {
	*backendtest.Fake
	started chan struct{}
	release chan struct{}
}

func (b *blockingTasks) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	close(b.started)
	<-b.release
	return b.Fake.ListTasks(ctx, token)
}

func TestLoad_DiscardsResultsAfterReset(t *testing.T) {
	api := &blockingTasks{Fake: seededFake(), started: make(chan struct{}), release: make(chan struct{})}
	w := NewWorkspace()

	done := make(chan error, 1)
	go func() { done <- w.Load(context.Background(), api, "tok") }()

	<-api.started
	w.Reset()
	close(api.release)

	err := <-done
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, w.Snapshot().Tasks)
}

func TestReset_ClearsFormsAndNotices(t *testing.T) {
	w := NewWorkspace()
	w.Forms(func(fs *FormState) { fs.Tasks.OpenCreate(forms.DefaultTaskForm()) })
	w.Notify(NoticeInfo, "hello")
	gen := w.Generation()

	w.Reset()
	assert.Equal(t, gen+1, w.Generation())
	assert.Empty(t, w.TakeNotices())
	w.Forms(func(fs *FormState) { assert.False(t, fs.Tasks.Edit.Open) })
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.Equal(t, 1, r.Len())

	gen := a.Generation()
	r.Drop("a")
	_, ok := r.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, gen+1, a.Generation())
	assert.NotSame(t, a, r.Get("a"))
}

func TestRegistry_EvictsIdleWorkspaces(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry().WithIdleTimeout(time.Minute).WithClock(func() time.Time { return now })

	old := r.Get("old")
	gen := old.Generation()
	now = now.Add(30 * time.Second)
	r.Get("recent")
	assert.Equal(t, 2, r.Len())

	now = now.Add(45 * time.Second)
	// "old" has been idle 75s, "recent" 45s
	_, ok := r.Lookup("recent")
	require.True(t, ok)
	assert.Equal(t, 1, r.Len())
	_, ok = r.Lookup("old")
	assert.False(t, ok)
	assert.Equal(t, gen+1, old.Generation())

	// a workspace is never evicted by its own lookup
	now = now.Add(time.Hour)
	_, ok = r.Lookup("recent")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_NoTimeoutKeepsWorkspaces(t *testing.T) {
	now := time.Now()
	r := NewRegistry().WithClock(func() time.Time { return now })
	r.Get("a")
	now = now.Add(24 * time.Hour)
	r.Get("b")
	assert.Equal(t, 2, r.Len())
}
