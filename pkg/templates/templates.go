// Package templates renders the HTML pages. Page files are embedded and each page
// is parsed together with the shared layout.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/forms"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/models"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/store"
	"github.com/GaneshSuryvanshi/task-tracker-frontend/pkg/views"
)

//go:embed html/*.html
var files embed.FS

// Page names
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageTasks     = "tasks"
	PageProjects  = "projects"
	PageUsers     = "users"
	PageError     = "error"
)

// PageData is what the layout needs plus the page body.
type PageData struct {
	Title     string
	Active    string
	Principal *models.Principal
	ShowUsers bool
	Notices   []store.Notice
	Body      interface{}
}

// LoginBody 登录页
type LoginBody struct {
	Email         string
	Error         string
	GoogleEnabled bool
}

// TasksBody 任务页
type TasksBody struct {
	List views.TaskList
	Form forms.Page[forms.TaskForm]
	// StatusOnly is set when the open edit form may only change the status.
	StatusOnly bool
	// Query keeps the current filters on form actions.
	Query string
}

// ProjectsBody 项目页
type ProjectsBody struct {
	List views.ProjectList
	Form forms.Page[forms.ProjectForm]
}

// UsersBody 用户页
type UsersBody struct {
	List views.UserList
	Form forms.Page[forms.UserForm]
}

// ErrorBody 错误页
type ErrorBody struct {
	Status  int
	Message string
}

var funcs = template.FuncMap{
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
	"selected": func(a, b string) bool {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	},
	"withQuery": func(path, query string) string {
		if query == "" {
			return path
		}
		return path + "?" + query
	},
}

// Renderer 预解析的页面集合
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page with the layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range []string{PageLogin, PageDashboard, PageTasks, PageProjects, PageUsers, PageError} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "html/layout.html", "html/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Must 解析失败时 panic，用于启动阶段
func Must() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes a page into w. The page is rendered to a buffer first so a
// template error never leaves half a page on the wire.
func (r *Renderer) Render(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
