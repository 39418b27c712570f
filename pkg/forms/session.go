// Package forms holds the transient editing state of the CRUD pages: which record is
// being created or edited, the field values, and pending delete confirmations.
package forms

import (
	"errors"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
)

var (
	// ErrNotOpen 编辑会话未打开
	ErrNotOpen = errors.New("no edit session is open")
	// ErrNotConfirmed 删除操作未经确认
	ErrNotConfirmed = errors.New("delete was not confirmed")
)

// Mode 编辑模式
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// MarshalText 以 create/edit 形式输出
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// EditSession is the editing state of one entity form.
type EditSession[F any] struct {
	Mode     Mode
	TargetID models.ID
	Values   F
	Open     bool
	Errors   map[string]string
}

// OpenCreate 以默认值打开创建表单
func (s *EditSession[F]) OpenCreate(defaults F) {
	*s = EditSession[F]{Mode: ModeCreate, Values: defaults, Open: true}
}

// OpenEdit 以目标记录的当前值打开编辑表单
func (s *EditSession[F]) OpenEdit(id models.ID, values F) {
	*s = EditSession[F]{Mode: ModeEdit, TargetID: id, Values: values, Open: true}
}

// SetValues 更新表单字段
func (s *EditSession[F]) SetValues(values F) error {
	if !s.Open {
		return ErrNotOpen
	}
	s.Values = values
	s.Errors = nil
	return nil
}

// Fail keeps the session open and records field errors for the next render.
func (s *EditSession[F]) Fail(errs map[string]string) {
	s.Errors = errs
}

// Cancel 丢弃正在编辑的内容，没有任何副作用
func (s *EditSession[F]) Cancel() {
	*s = EditSession[F]{}
}

// Submission 提交的表单
type Submission[F any] struct {
	Mode   Mode
	ID     models.ID
	Values F
}

// IsCreate 是否为创建请求
func (s Submission[F]) IsCreate() bool {
	return s.Mode == ModeCreate
}

// Submit packages the values into a create or update request. The session stays
// open until Complete is called after the server confirms the change.
func (s *EditSession[F]) Submit() (Submission[F], error) {
	if !s.Open {
		return Submission[F]{}, ErrNotOpen
	}
	return Submission[F]{Mode: s.Mode, ID: s.TargetID, Values: s.Values}, nil
}

// Complete 提交成功后重置为关闭状态
func (s *EditSession[F]) Complete() {
	*s = EditSession[F]{}
}

// Confirmation 待确认的删除操作
type Confirmation struct {
	ID      models.ID
	Message string
	Pending bool
}

// Page 每个页面同一时间只允许一个打开的编辑会话或删除确认
type Page[F any] struct {
	Edit   EditSession[F]
	Delete Confirmation
}

// OpenCreate 打开创建表单，替换页面上任何已打开的会话
func (p *Page[F]) OpenCreate(defaults F) {
	p.Delete = Confirmation{}
	p.Edit.OpenCreate(defaults)
}

// OpenEdit 打开编辑表单，替换页面上任何已打开的会话
func (p *Page[F]) OpenEdit(id models.ID, values F) {
	p.Delete = Confirmation{}
	p.Edit.OpenEdit(id, values)
}

// RequestDelete asks for confirmation before the delete request is issued.
func (p *Page[F]) RequestDelete(id models.ID, message string) {
	p.Edit.Cancel()
	p.Delete = Confirmation{ID: id, Message: message, Pending: true}
}

// ConfirmDelete 确认删除；只有针对同一 id 的待确认请求才会通过
func (p *Page[F]) ConfirmDelete(id models.ID) error {
	if !p.Delete.Pending || !p.Delete.ID.Equal(id) {
		return ErrNotConfirmed
	}
	p.Delete = Confirmation{}
	return nil
}

// CancelDelete 取消删除确认
func (p *Page[F]) CancelDelete() {
	p.Delete = Confirmation{}
}

// Close 关闭页面上的所有会话
func (p *Page[F]) Close() {
	p.Edit.Cancel()
	p.Delete = Confirmation{}
}
