package models

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// User 后端用户记录
type User struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RoleID ID     `json:"role_id"`
	// Password is write-only: it is sent on create/update and never read back.
	Password string `json:"-"`
}

// GetID implements store.Record
func (u User) GetID() ID { return u.ID }

// UserPayload 创建/更新用户的请求体
type UserPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	RoleID   ID     `json:"role_id"`
}

// Principal 当前登录的用户身份
type Principal struct {
	ID    ID       `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  RoleName `json:"role"`
}

// UnmarshalJSON normalizes the role string into the closed RoleName set.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    ID     `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	p.Name = raw.Name
	p.Email = raw.Email
	p.Role = ParseRole(raw.Role)
	return nil
}

// DisplayName 显示名称，没有名字时退回到邮箱
func (p *Principal) DisplayName() string {
	if p == nil {
		return ""
	}
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Email
}

// LoginRequest 登录请求体
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the principal returned by POST /users/login/. Later backend
// revisions also return a bearer token under one of the token keys.
type LoginResponse struct {
	Principal
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// UnmarshalJSON 解析主体信息与可选的令牌
func (r *LoginResponse) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Principal); err != nil {
		return err
	}
	var tokens struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}
	r.Token = tokens.Token
	r.AccessToken = tokens.AccessToken
	return nil
}

// BearerToken 返回后端签发的令牌
func (r *LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// RoleLookupResponse GET /users/get_role 的响应
type RoleLookupResponse struct {
	Role string `json:"role"`
	ID   ID     `json:"id"`
}

// SessionClaims 会话 cookie 中的 JWT claims
type SessionClaims struct {
	SessionID string `json:"sid"`
	Type      string `json:"type"` // always "session"
	Exp       int64  `json:"exp"`
	Iat       int64  `json:"iat"`
}

// GetExpirationTime implements jwt.Claims interface
func (c *SessionClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(unixTime(c.Exp)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *SessionClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(unixTime(c.Iat)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *SessionClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *SessionClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *SessionClaims) GetSubject() (string, error) {
	return c.SessionID, nil
}

// GetAudience implements jwt.Claims interface
func (c *SessionClaims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
