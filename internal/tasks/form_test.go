package tasks

import "testing"

func TestFormCreateMode(t *testing.T) {
	form := NewForm(NewCounter(100))
	form.OpenCreate()

	if form.Mode() != FormCreate {
		t.Fatalf("expected create mode, got %s", form.Mode())
	}
	if f := form.Fields(); f.Title != "" || f.Description != "" || f.Priority != PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", f)
	}

	form.SetTitle("Read")
	form.SetDescription("Chapter 4")
	form.SetPriority(PriorityHigh)

	task, ok := form.Submit()
	if !ok {
		t.Fatal("expected submit to succeed")
	}
	if task.ID != 101 || task.Completed {
		t.Errorf("expected fresh id 101 and not completed, got %+v", task)
	}
	if task.Title != "Read" || task.Description != "Chapter 4" || task.Priority != PriorityHigh {
		t.Errorf("fields not carried: %+v", task)
	}

	if form.Open() {
		t.Error("form should be closed after submit")
	}
	if f := form.Fields(); f != DefaultFields() {
		t.Errorf("fields not reset: %+v", f)
	}
}

func TestFormEditModeKeepsIdentity(t *testing.T) {
	orig := Task{ID: 7, Title: "Old", Description: "old", Priority: PriorityLow, Completed: true}

	form := NewForm(NewCounter(0))
	form.OpenEdit(orig)

	if f := form.Fields(); f.Title != "Old" || f.Priority != PriorityLow {
		t.Fatalf("fields not preloaded: %+v", f)
	}

	form.SetFields(Fields{Title: "New", Description: "new", Priority: PriorityHigh})
	task, ok := form.Submit()
	if !ok {
		t.Fatal("expected submit to succeed")
	}

	want := Task{ID: 7, Title: "New", Description: "new", Priority: PriorityHigh, Completed: true}
	if task != want {
		t.Errorf("got %+v, want %+v", task, want)
	}
}

func TestFormCancelResets(t *testing.T) {
	form := NewForm(NewCounter(0))
	form.OpenEdit(Seed()[1])
	form.Cancel()

	if form.Mode() != FormClosed {
		t.Errorf("expected closed, got %s", form.Mode())
	}
	if f := form.Fields(); f != DefaultFields() {
		t.Errorf("fields not reset: %+v", f)
	}
	if _, ok := form.Submit(); ok {
		t.Error("submit on closed form should fail")
	}
}

func TestFieldsMissing(t *testing.T) {
	if m := (Fields{Title: "  ", Description: "x"}).Missing(); len(m) != 1 || m[0] != "title" {
		t.Errorf("expected [title], got %v", m)
	}
	if m := (Fields{Title: "t", Description: "d"}).Missing(); len(m) != 0 {
		t.Errorf("expected none, got %v", m)
	}
}
