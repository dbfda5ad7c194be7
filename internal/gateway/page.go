package gateway

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dohr-michael/taskboard/internal/tasks"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"priorityLabel": func(p tasks.Priority) string { return p.Label() },
}).ParseFS(templateFS, "templates/index.html"))

type formView struct {
	Mode        tasks.FormMode
	Action      string
	Heading     string
	Submit      string
	Title       string
	Description string
	Priority    tasks.Priority
}

type pageData struct {
	Query      string
	Items      []tasks.ListItem
	Form       *formView
	Error      string
	Priorities []tasks.Priority
}

// handleIndex renders the board. ?q= filters the list, ?add=1 opens the
// create form and ?edit=<id> opens the edit form for that task.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{Query: q.Get("q")}

	switch {
	case q.Get("edit") != "":
		id, err := strconv.ParseInt(q.Get("edit"), 10, 64)
		if err != nil {
			http.Error(w, "invalid task id", http.StatusBadRequest)
			return
		}
		t, ok := s.tasks.Get(id)
		if !ok {
			http.Error(w, tasks.ErrNotFound.Error(), http.StatusNotFound)
			return
		}
		data.Form = editForm(t.ID, tasks.Fields{Title: t.Title, Description: t.Description, Priority: t.Priority})
	case q.Get("add") != "":
		data.Form = createForm(tasks.DefaultFields())
	}

	s.render(w, http.StatusOK, data)
}

func createForm(f tasks.Fields) *formView {
	return &formView{
		Mode:        tasks.FormCreate,
		Action:      "/tasks",
		Heading:     "Add New Task",
		Submit:      "Add Task",
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
	}
}

func editForm(id int64, f tasks.Fields) *formView {
	return &formView{
		Mode:        tasks.FormEdit,
		Action:      fmt.Sprintf("/tasks/%d/edit", id),
		Heading:     "Edit Task",
		Submit:      "Update Task",
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	data.Items = s.tasks.Items(data.Query)
	data.Priorities = tasks.Priorities

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		slog.Error("render page", "error", err)
	}
}

func formFields(r *http.Request) tasks.Fields {
	p := tasks.Priority(r.PostFormValue("priority"))
	if p == "" {
		p = tasks.PriorityMedium
	}
	return tasks.Fields{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    p,
	}
}

// backTo redirects to the board, keeping the search query.
func backTo(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if q := r.PostFormValue("q"); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formFailed re-renders the open form with the error, or answers 404.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, form *formView, err error) {
	status := statusFor(err)
	if errors.Is(err, tasks.ErrNotFound) {
		http.Error(w, err.Error(), status)
		return
	}
	s.render(w, status, pageData{Query: r.PostFormValue("q"), Form: form, Error: err.Error()})
}

func (s *Server) handleFormCreate(w http.ResponseWriter, r *http.Request) {
	f := formFields(r)
	if _, err := s.tasks.Create(f); err != nil {
		s.formFailed(w, r, createForm(f), err)
		return
	}
	backTo(w, r)
}

func (s *Server) handleFormEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := formTaskID(w, r)
	if !ok {
		return
	}
	f := formFields(r)
	if _, err := s.tasks.Edit(id, f); err != nil {
		s.formFailed(w, r, editForm(id, f), err)
		return
	}
	backTo(w, r)
}

func (s *Server) handleFormToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := formTaskID(w, r)
	if !ok {
		return
	}
	if _, err := s.tasks.Toggle(id); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	backTo(w, r)
}

func (s *Server) handleFormDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := formTaskID(w, r)
	if !ok {
		return
	}
	if _, err := s.tasks.Delete(id); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	backTo(w, r)
}

func formTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
