package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

var (
	admin       = &models.Principal{ID: "1", Role: models.RoleAdmin}
	taskCreator = &models.Principal{ID: "2", Role: models.RoleTaskCreator}
	plainUser   = &models.Principal{ID: "7", Role: models.RoleUser}
	unknownRole = &models.Principal{ID: "7", Role: models.RoleNone}
)

func TestAllowed_Table(t *testing.T) {
	owned := &models.Task{ID: "101", OwnerID: "7"}
	notOwned := &models.Task{ID: "102", OwnerID: "9"}

	type row struct {
		action                                  Action
		admin, creator, userOwner, userNonOwner bool
	}
	table := []row{
		{ViewAllTasks, true, true, false, false},
		{ViewTask, true, true, true, false},
		{ManageProjects, true, false, false, false},
		{CreateTask, true, true, false, false},
		{EditTaskAll, true, true, false, false},
		{EditTaskStatus, true, true, true, false},
		{DeleteTask, true, false, false, false},
		{ManageUsers, true, false, false, false},
	}

	for _, r := range table {
		t.Run(string(r.action), func(t *testing.T) {
			// admin and task_creator results do not depend on ownership
			for _, task := range []*models.Task{owned, notOwned} {
				assert.Equal(t, r.admin, Allowed(admin, r.action, task), "admin")
				assert.Equal(t, r.creator, Allowed(taskCreator, r.action, task), "task_creator")
			}
			assert.Equal(t, r.userOwner, Allowed(plainUser, r.action, owned), "user owner")
			assert.Equal(t, r.userNonOwner, Allowed(plainUser, r.action, notOwned), "user non-owner")
		})
	}
}

func TestAllowed_UnknownRoleGetsNothing(t *testing.T) {
	owned := &models.Task{ID: "101", OwnerID: "7"}
	for _, a := range []Action{ViewAllTasks, ViewTask, ViewProjects, ManageProjects, CreateTask, EditTaskAll, EditTaskStatus, DeleteTask, ManageUsers} {
		assert.False(t, Allowed(unknownRole, a, owned), a)
		assert.False(t, Allowed(nil, a, owned), a)
	}
	assert.False(t, Allowed(admin, Action("launch_rockets"), nil))
}

func TestCanViewProjects(t *testing.T) {
	assert.True(t, CanViewProjects(admin))
	assert.True(t, CanViewProjects(taskCreator))
	assert.True(t, CanViewProjects(plainUser))
	assert.False(t, CanViewProjects(unknownRole))
}

func TestVisibleTasks_UserSeesOwnOnly(t *testing.T) {
	tasks := []models.Task{
		{ID: "101", OwnerID: "7"},
		{ID: "102", OwnerID: "9"},
		{ID: "103", OwnerID: "7"},
	}

	got := VisibleTasks(plainUser, tasks)
	if assert.Len(t, got, 2) {
		assert.Equal(t, models.ID("101"), got[0].ID)
		assert.Equal(t, models.ID("103"), got[1].ID)
	}

	assert.Len(t, VisibleTasks(admin, tasks), 3)
	assert.Len(t, VisibleTasks(taskCreator, tasks), 3)
	assert.Empty(t, VisibleTasks(unknownRole, tasks))
}

func TestEditableTaskFields(t *testing.T) {
	owned := &models.Task{ID: "101", OwnerID: "7"}
	notOwned := &models.Task{ID: "102", OwnerID: "9"}

	assert.Equal(t, AllTaskFields, EditableTaskFields(admin, notOwned))
	assert.Equal(t, AllTaskFields, EditableTaskFields(taskCreator, notOwned))
	assert.Equal(t, []Field{FieldStatus}, EditableTaskFields(plainUser, owned))
	assert.Empty(t, EditableTaskFields(plainUser, notOwned))

	assert.True(t, StatusOnly(plainUser, owned))
	assert.False(t, StatusOnly(admin, owned))
	assert.False(t, StatusOnly(plainUser, notOwned))
	assert.False(t, CanEditTask(plainUser, notOwned))
}

func TestIsOwner_ZeroPrincipalID(t *testing.T) {
	// an SSO principal without a backend id owns nothing, even tasks with no owner
	p := &models.Principal{Role: models.RoleUser}
	assert.False(t, IsOwner(p, &models.Task{ID: "1"}))
}

func TestScenario_OwnerSevenViewsTaskList(t *testing.T) {
	tasks := []models.Task{{ID: "a", OwnerID: "7"}, {ID: "b", OwnerID: "9"}}

	visible := VisibleTasks(plainUser, tasks)
	if assert.Len(t, visible, 1) {
		assert.Equal(t, models.ID("a"), visible[0].ID)
		assert.Equal(t, []Field{FieldStatus}, EditableTaskFields(plainUser, &visible[0]))
	}
	assert.False(t, CanEditTask(plainUser, &tasks[1]))
}
