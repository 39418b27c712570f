package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized 后端拒绝了会话令牌（401/403）
var ErrUnauthorized = errors.New("backend rejected the session")

// APIError 后端返回的非成功响应
type APIError struct {
	StatusCode int
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrUnauthorized) match authorization rejections.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// newAPIError 从响应体中提取 detail 信息
func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Detail:     extractDetail(body),
		Body:       string(body),
	}
}

func extractDetail(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "message", "error"} {
		switch v := payload[key].(type) {
		case string:
			return strings.TrimSpace(v)
		case map[string]interface{}:
			if msg, ok := v["message"].(string); ok {
				return strings.TrimSpace(msg)
			}
		case []interface{}:
			// validation errors come back as a list of {msg: ...}
			var msgs []string
			for _, item := range v {
				if m, ok := item.(map[string]interface{}); ok {
					if s, ok := m["msg"].(string); ok {
						msgs = append(msgs, s)
					}
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return ""
}

// DetailOf returns the server's detail message for err, or "" when there is none.
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// StatusOf 返回后端状态码，非 APIError 返回 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
