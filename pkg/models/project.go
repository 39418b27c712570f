package models

// Project 项目记录
// 删除项目时后端会级联删除其任务，前端只负责提示。
type Project struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	OwnerID     ID     `json:"owner_id"`
}

// GetID implements store.Record
func (p Project) GetID() ID { return p.ID }

// ProjectPayload 创建/更新项目的请求体
type ProjectPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	OwnerID     ID     `json:"owner_id"`
}
