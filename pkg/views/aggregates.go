// Package views turns the cached collections into what each page renders: rows with
// their affordances, filter options and dashboard aggregates. Everything here is
// recomputed from a store snapshot on each request.
package views

import (
	"time"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

// NotAvailable is shown in place of a name whose record is not cached.
const NotAvailable = "N/A"

// StatusCount 状态直方图的一项
type StatusCount struct {
	Status  models.TaskStatus `json:"status"`
	Count   int               `json:"count"`
	Percent int               `json:"percent"`
}

// ProjectCount 每个项目的任务数
type ProjectCount struct {
	ProjectID models.ID `json:"project_id"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Percent   int       `json:"percent"`
}

// StatusHistogram counts tasks per status. Known statuses come first in picker
// order, followed by any other status in the order it was first seen. Statuses
// with no tasks are left out.
func StatusHistogram(tasks []models.Task) []StatusCount {
	counts := map[models.TaskStatus]int{}
	var extra []models.TaskStatus
	for _, t := range tasks {
		if counts[t.Status] == 0 && !t.Status.Valid() {
			extra = append(extra, t.Status)
		}
		counts[t.Status]++
	}

	order := append(append([]models.TaskStatus(nil), models.TaskStatuses...), extra...)
	out := make([]StatusCount, 0, len(counts))
	for _, s := range order {
		if n := counts[s]; n > 0 {
			out = append(out, StatusCount{Status: s, Count: n, Percent: percent(n, len(tasks))})
		}
	}
	return out
}

// TasksPerProject 每个项目（按项目顺序）的任务数，没有任务的项目计为 0
func TasksPerProject(projects []models.Project, tasks []models.Task) []ProjectCount {
	busiest := 0
	out := make([]ProjectCount, len(projects))
	for i, p := range projects {
		n := 0
		for _, t := range tasks {
			if t.ProjectID.Equal(p.ID) {
				n++
			}
		}
		out[i] = ProjectCount{ProjectID: p.ID, Name: p.Name, Count: n}
		if n > busiest {
			busiest = n
		}
	}
	// bars are scaled against the busiest project
	for i := range out {
		out[i].Percent = percent(out[i].Count, busiest)
	}
	return out
}

// IsOverdue reports whether t's due date is strictly before the calendar day of now
// and t is not completed. A missing or unparseable due date is never overdue.
func IsOverdue(t models.Task, now time.Time) bool {
	if t.Status == models.StatusCompleted || t.DueDate == "" {
		return false
	}
	due, err := models.ParseDate(t.DueDate)
	if err != nil {
		return false
	}
	return day(due).Before(day(now))
}

// OverdueTasks 过期任务
func OverdueTasks(tasks []models.Task, now time.Time) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if IsOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// YourTasks 分配给当前用户的任务
func YourTasks(p *models.Principal, tasks []models.Task) []models.Task {
	if p == nil || p.ID.IsZero() {
		return nil
	}
	var out []models.Task
	for _, t := range tasks {
		if t.OwnerID.Equal(p.ID) {
			out = append(out, t)
		}
	}
	return out
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return n * 100 / total
}
