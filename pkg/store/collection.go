package store

import "github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"

// Record 可按 id 协调的记录
type Record interface {
	GetID() models.ID
}

// Appended returns list plus rec. The record must carry a server-assigned id; when
// that id is already present the existing entry is replaced so it appears once.
func Appended[T Record](list []T, rec T) []T {
	if out, ok := Replaced(list, rec); ok {
		return out
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, rec)
}

// Replaced returns a copy of list with the entry whose id matches rec swapped for rec.
// Order is preserved. ok is false when no entry matched; list is then returned as is.
func Replaced[T Record](list []T, rec T) (out []T, ok bool) {
	idx := indexOf(list, rec.GetID())
	if idx < 0 {
		return list, false
	}
	out = make([]T, len(list))
	copy(out, list)
	out[idx] = rec
	return out, true
}

// Removed returns a copy of list without the entry whose id is id.
func Removed[T Record](list []T, id models.ID) (out []T, ok bool) {
	idx := indexOf(list, id)
	if idx < 0 {
		return list, false
	}
	out = make([]T, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...), true
}

// Find 按 id 查找记录
func Find[T Record](list []T, id models.ID) (T, bool) {
	var zero T
	idx := indexOf(list, id)
	if idx < 0 {
		return zero, false
	}
	return list[idx], true
}

func indexOf[T Record](list []T, id models.ID) int {
	if id.IsZero() {
		return -1
	}
	for i := range list {
		if list[i].GetID().Equal(id) {
			return i
		}
	}
	return -1
}

// Collection 远端集合在内存中的镜像
type Collection[T Record] struct {
	items  []T
	loaded bool
}

// Items 返回副本
func (c *Collection[T]) Items() []T {
	return append([]T(nil), c.items...)
}

// Len 记录数
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Loaded reports whether a bulk fetch has ever succeeded for this collection.
func (c *Collection[T]) Loaded() bool {
	return c.loaded
}

// Replace 用批量拉取的结果整体替换
func (c *Collection[T]) Replace(items []T) {
	c.items = append([]T(nil), items...)
	c.loaded = true
}

func (c *Collection[T]) append(rec T) {
	c.items = Appended(c.items, rec)
}

func (c *Collection[T]) replace(rec T) bool {
	var ok bool
	c.items, ok = Replaced(c.items, rec)
	return ok
}

func (c *Collection[T]) remove(id models.ID) bool {
	var ok bool
	c.items, ok = Removed(c.items, id)
	return ok
}

func (c *Collection[T]) reset() {
	c.items = nil
	c.loaded = false
}
