package tasks

import "strings"

// FormMode is the state of the task form.
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Fields are the user-editable parts of a task.
type Fields struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// DefaultFields are the create-mode defaults.
func DefaultFields() Fields {
	return Fields{Priority: PriorityMedium}
}

// Missing lists the required fields left blank.
func (f Fields) Missing() []string {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	return missing
}

// Form collects title, description and priority for a new or edited task.
type Form struct {
	mode    FormMode
	editing Task
	fields  Fields
	ids     IDGenerator
}

// NewForm creates a closed form minting ids from ids.
func NewForm(ids IDGenerator) *Form {
	return &Form{ids: ids, fields: DefaultFields()}
}

// Mode returns the current state.
func (f *Form) Mode() FormMode { return f.mode }

// Open reports whether the form is accepting input.
func (f *Form) Open() bool { return f.mode != FormClosed }

// Fields returns the current field values.
func (f *Form) Fields() Fields { return f.fields }

// Editing returns the task being edited, if any.
func (f *Form) Editing() (Task, bool) {
	return f.editing, f.mode == FormEdit
}

// OpenCreate opens the form with empty fields and medium priority.
func (f *Form) OpenCreate() {
	f.mode = FormCreate
	f.editing = Task{}
	f.fields = DefaultFields()
}

// OpenEdit opens the form preloaded from t.
func (f *Form) OpenEdit(t Task) {
	f.mode = FormEdit
	f.editing = t
	f.fields = Fields{Title: t.Title, Description: t.Description, Priority: t.Priority}
}

func (f *Form) SetTitle(s string)       { f.fields.Title = s }
func (f *Form) SetDescription(s string) { f.fields.Description = s }
func (f *Form) SetPriority(p Priority)  { f.fields.Priority = p }
func (f *Form) SetFields(fields Fields) { f.fields = fields }

// Submit builds the task and closes the form. In edit mode the id and
// completed flag come from the original task; in create mode a fresh id is
// minted and completed is false. ok is false when the form was closed.
func (f *Form) Submit() (t Task, ok bool) {
	switch f.mode {
	case FormEdit:
		t = Task{
			ID:        f.editing.ID,
			Completed: f.editing.Completed,
		}
	case FormCreate:
		t = Task{ID: f.ids.NextID()}
	default:
		return Task{}, false
	}
	t.Title = f.fields.Title
	t.Description = f.fields.Description
	t.Priority = f.fields.Priority

	f.reset()
	return t, true
}

// Cancel closes the form, discarding input.
func (f *Form) Cancel() {
	f.reset()
}

func (f *Form) reset() {
	f.mode = FormClosed
	f.editing = Task{}
	f.fields = DefaultFields()
}
