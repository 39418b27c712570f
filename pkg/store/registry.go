package store

import (
	"sync"
	"time"
)

// entry 工作区及其最后使用时间
type entry struct {
	ws       *Workspace
	lastSeen time.Time
}

// Registry 会话 id 到工作区的映射
// Workspaces unused for longer than the idle timeout are evicted, so sessions
// that simply expire do not keep their caches alive.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*entry
	idle       time.Duration
	now        func() time.Time
}

// NewRegistry 创建注册表（默认不过期）
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*entry), now: time.Now}
}

// WithIdleTimeout evicts workspaces idle for longer than d. Zero disables eviction.
func (r *Registry) WithIdleTimeout(d time.Duration) *Registry {
	r.idle = d
	return r
}

// WithClock 替换时钟（测试用）
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Get returns the workspace for sid, creating an empty one on first use.
func (r *Registry) Get(sid string) *Workspace {
	r.mu.Lock()
	now := r.now()
	evicted := r.sweep(now, sid)
	e, ok := r.workspaces[sid]
	if !ok {
		e = &entry{ws: NewWorkspace()}
		r.workspaces[sid] = e
	}
	e.lastSeen = now
	r.mu.Unlock()

	resetAll(evicted)
	return e.ws
}

// Lookup 查找已存在的工作区
func (r *Registry) Lookup(sid string) (*Workspace, bool) {
	r.mu.Lock()
	now := r.now()
	evicted := r.sweep(now, sid)
	e, ok := r.workspaces[sid]
	if ok {
		e.lastSeen = now
	}
	r.mu.Unlock()

	resetAll(evicted)
	if !ok {
		return nil, false
	}
	return e.ws, true
}

// sweep removes idle workspaces other than keep. Called with r.mu held.
func (r *Registry) sweep(now time.Time, keep string) []*Workspace {
	if r.idle <= 0 {
		return nil
	}
	var evicted []*Workspace
	for sid, e := range r.workspaces {
		if sid != keep && now.Sub(e.lastSeen) > r.idle {
			delete(r.workspaces, sid)
			evicted = append(evicted, e.ws)
		}
	}
	return evicted
}

// resetAll 在锁外重置被移除的工作区
func resetAll(list []*Workspace) {
	for _, ws := range list {
		ws.Reset()
	}
}

// Drop resets the workspace of sid and forgets it. Requests still running against
// the old workspace see ErrStale when they try to commit.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	e, ok := r.workspaces[sid]
	delete(r.workspaces, sid)
	r.mu.Unlock()
	if ok {
		e.ws.Reset()
	}
}

// Len 当前工作区数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
