package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalNumberAndString(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":101,"owner_id":"7","project_id":3}`), &task))

	assert.Equal(t, ID("101"), task.ID)
	assert.Equal(t, ID("7"), task.OwnerID)
	assert.True(t, task.OwnerID.Equal(ID("7")))
	assert.Equal(t, ID("3"), task.ProjectID)
}

func TestID_UnmarshalNull(t *testing.T) {
	var r RoleLookupResponse
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user","id":null}`), &r))
	assert.True(t, r.ID.IsZero())
}

func TestID_Marshal(t *testing.T) {
	out, err := json.Marshal(TaskPayload{OwnerID: "7", ProjectID: "abc", Status: StatusNew})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"owner_id":7`)
	assert.Contains(t, string(out), `"project_id":"abc"`)
}

func TestID_MarshalNonCanonicalNumbersAsStrings(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{"7", `7`},
		{"-3", `-3`},
		{"007", `"007"`},
		{"+7", `"+7"`},
		{"-0", `"-0"`},
		{"", `""`},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			out, err := json.Marshal(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
			assert.True(t, json.Valid(out))
		})
	}

	out, err := json.Marshal(TaskPayload{OwnerID: "007", ProjectID: "+7"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"owner_id":"007"`)
	assert.Contains(t, string(out), `"project_id":"+7"`)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want RoleName
	}{
		{"admin", RoleAdmin},
		{"task_creator", RoleTaskCreator},
		{" USER ", RoleUser},
		{"superuser", RoleNone},
		{"", RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestPrincipal_UnmarshalNormalizesRole(t *testing.T) {
	var p Principal
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"name":"Ann","email":"ann@example.com","role":"Admin"}`), &p))
	assert.Equal(t, RoleAdmin, p.Role)
	assert.Equal(t, ID("7"), p.ID)
	assert.Equal(t, "Ann", p.DisplayName())
}

func TestLoginResponse_BearerToken(t *testing.T) {
	var r LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"A","email":"a@x","role":"user","token":"t1"}`), &r))
	assert.Equal(t, "t1", r.BearerToken())
	assert.Equal(t, RoleUser, r.Role)

	var r2 LoginResponse
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"role":"user","token":"t1","access_token":"t2"}`), &r2))
	assert.Equal(t, "t2", r2.BearerToken())
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	out, err := json.Marshal(User{ID: "1", Name: "A", Password: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())

	_, err = ParseDate("2024-03-01T10:00:00Z")
	assert.NoError(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)

	_, err = ParseDate("03/01/2024")
	assert.Error(t, err)
}

func TestTaskStatus_Valid(t *testing.T) {
	for _, s := range TaskStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("done").Valid())
}
