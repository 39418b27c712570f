package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in-progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusCompleted  TaskStatus = "completed"
	StatusNotStarted TaskStatus = "not started"
)

// TaskStatuses lists the statuses in the order the status picker shows them.
var TaskStatuses = []TaskStatus{StatusNew, StatusInProgress, StatusBlocked, StatusCompleted, StatusNotStarted}

// Valid 是否为已知状态
func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Task 任务记录
type Task struct {
	ID          ID         `json:"id"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Status      TaskStatus `json:"status"`
	OwnerID     ID         `json:"owner_id"`
	ProjectID   ID         `json:"project_id"`
}

// GetID implements store.Record
func (t Task) GetID() ID { return t.ID }

// TaskPayload 创建/更新任务的请求体
type TaskPayload struct {
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Status      TaskStatus `json:"status"`
	OwnerID     ID         `json:"owner_id"`
	ProjectID   ID         `json:"project_id"`
}

// PayloadOf 由已有任务构造更新请求体
func PayloadOf(t Task) TaskPayload {
	return TaskPayload{
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		OwnerID:     t.OwnerID,
		ProjectID:   t.ProjectID,
	}
}

// DateLayout is the calendar date format the API uses.
const DateLayout = "2006-01-02"

// ParseDate 解析日期，支持 YYYY-MM-DD 与 RFC3339
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0)
}
