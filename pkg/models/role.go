package models

import "strings"

// RoleName 角色名称（封闭集合）
type RoleName string

const (
	RoleAdmin       RoleName = "admin"
	RoleTaskCreator RoleName = "task_creator"
	RoleUser        RoleName = "user"
	// RoleNone is what an unrecognized role string parses to; it is granted nothing.
	RoleNone RoleName = ""
)

// ParseRole 解析角色名称，未知角色返回 RoleNone
func ParseRole(s string) RoleName {
	switch RoleName(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleTaskCreator:
		return RoleTaskCreator
	case RoleUser:
		return RoleUser
	}
	return RoleNone
}

// Valid 是否为已知角色
func (r RoleName) Valid() bool {
	return r == RoleAdmin || r == RoleTaskCreator || r == RoleUser
}

// Role 角色记录（只读，每个会话只拉取一次）
type Role struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// GetID implements store.Record
func (r Role) GetID() ID { return r.ID }
