package taskboard

import "testing"

func TestAddRejectsBlankName(t *testing.T) {
	b := NewBoard()
	if _, err := b.Add(Draft{Name: "   "}); err != ErrNameRequired {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("collection must stay unchanged, got %d tasks", b.Len())
	}
}

func TestAddDefaults(t *testing.T) {
	b := NewBoard()
	task, err := b.Add(Draft{Name: "Review PR"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if task.Status != StatusPending {
		t.Fatalf("new tasks start Pending, got %s", task.Status)
	}
	if task.Priority != PriorityLow {
		t.Fatalf("default priority is Low, got %s", task.Priority)
	}
	if task.Type != DefaultType {
		t.Fatalf("default type is %q, got %q", DefaultType, task.Type)
	}
	if task.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if b.Len() != 1 {
		t.Fatalf("expected exactly one task, got %d", b.Len())
	}
}

func TestInsertionOrderIsDisplayOrder(t *testing.T) {
	b := NewBoard()
	names := []string{"first", "second", "third"}
	for _, n := range names {
		if _, err := b.Add(Draft{Name: n}); err != nil {
			t.Fatalf("Add %s: %v", n, err)
		}
	}
	tasks := b.Tasks()
	for i, n := range names {
		if tasks[i].Name != n {
			t.Fatalf("position %d: want %q, got %q", i, n, tasks[i].Name)
		}
	}
}

func TestUpdatePatchesWithoutReordering(t *testing.T) {
	b := NewBoard()
	a, _ := b.Add(Draft{Name: "alpha", Assignee: "ada"})
	c, _ := b.Add(Draft{Name: "beta"})

	assignee := "grace"
	prio := PriorityHigh
	updated, ok := b.Update(a.ID, Patch{Assignee: &assignee, Priority: &prio})
	if !ok {
		t.Fatal("expected update to find the task")
	}
	if updated.Assignee != "grace" || updated.Priority != PriorityHigh {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Name != "alpha" {
		t.Fatalf("untouched fields must survive, got name %q", updated.Name)
	}

	tasks := b.Tasks()
	if tasks[0].ID != a.ID || tasks[1].ID != c.ID {
		t.Fatal("update must not reorder the collection")
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	b := NewBoard()
	b.Add(Draft{Name: "alpha"})
	name := "renamed"
	if _, ok := b.Update("missing", Patch{Name: &name}); ok {
		t.Fatal("expected unknown id to be a no-op")
	}
	if b.Tasks()[0].Name != "alpha" {
		t.Fatal("collection must stay unchanged")
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	b := NewBoard()
	task, _ := b.Add(Draft{Name: "keep me"})
	if b.Delete("missing") {
		t.Fatal("expected delete of unknown id to report false")
	}
	tasks := b.Tasks()
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("collection changed: %+v", tasks)
	}
}

func TestDeleteRemovesTask(t *testing.T) {
	b := NewBoard()
	a, _ := b.Add(Draft{Name: "alpha"})
	c, _ := b.Add(Draft{Name: "beta"})
	if !b.Delete(a.ID) {
		t.Fatal("expected delete to succeed")
	}
	tasks := b.Tasks()
	if len(tasks) != 1 || tasks[0].ID != c.ID {
		t.Fatalf("unexpected remainder: %+v", tasks)
	}
}

func TestToggleIsAnInvolution(t *testing.T) {
	b := NewBoard()
	task, _ := b.Add(Draft{Name: "flip me"})

	once, ok := b.Toggle(task.ID)
	if !ok || once.Status != StatusCompleted {
		t.Fatalf("first toggle: ok=%v status=%s", ok, once.Status)
	}
	twice, ok := b.Toggle(task.ID)
	if !ok || twice.Status != StatusPending {
		t.Fatalf("second toggle must restore Pending, got %s", twice.Status)
	}
	if _, ok := b.Toggle("missing"); ok {
		t.Fatal("toggle of unknown id must be a no-op")
	}
}

func TestFilteredConjunction(t *testing.T) {
	b := NewBoard()
	for i := 0; i < 3; i++ {
		b.Add(Draft{Name: "leave", Type: TypeLeave, Assignee: "Ada"})
	}
	for i := 0; i < 2; i++ {
		task, _ := b.Add(Draft{Name: "leave done", Type: TypeLeave})
		b.Toggle(task.ID)
	}
	b.Add(Draft{Name: "info", Type: TypeEmployeeInfo})

	got := b.Filtered(Filter{Type: TypeLeave, Tab: TabActive})
	if len(got) != 3 {
		t.Fatalf("expected 3 pending LEAVE tasks, got %d", len(got))
	}
	for _, task := range got {
		if task.Type != TypeLeave || task.Status != StatusPending {
			t.Fatalf("filter leaked task %+v", task)
		}
	}

	if got := b.Filtered(Filter{Type: TypeLeave, Tab: TabClosed}); len(got) != 2 {
		t.Fatalf("expected 2 completed LEAVE tasks, got %d", len(got))
	}
	if got := b.Filtered(Filter{Type: TypeAll, Tab: TabActive}); len(got) != 4 {
		t.Fatalf("expected 4 pending tasks under All, got %d", len(got))
	}
}

func TestFilteredSearchIsCaseInsensitive(t *testing.T) {
	b := NewBoard()
	b.Add(Draft{Name: "one", Assignee: "Ada Lovelace"})
	b.Add(Draft{Name: "two", Assignee: "Grace Hopper"})
	b.Add(Draft{Name: "three"})

	got := b.Filtered(Filter{Tab: TabActive, Search: "ada"})
	if len(got) != 1 || got[0].Assignee != "Ada Lovelace" {
		t.Fatalf("unexpected search result: %+v", got)
	}
	if got := b.Filtered(Filter{Tab: TabActive, Search: "HOPPER"}); len(got) != 1 {
		t.Fatalf("search must be case-insensitive, got %+v", got)
	}
}

func TestFilteredNeverMutates(t *testing.T) {
	b := NewBoard()
	b.Add(Draft{Name: "immutable", Assignee: "ada"})

	view := b.Filtered(Filter{Tab: TabActive})
	view[0].Name = "mutated"
	view[0].Status = StatusCompleted

	tasks := b.Tasks()
	if tasks[0].Name != "immutable" || tasks[0].Status != StatusPending {
		t.Fatal("filtered view must be a copy, not an alias")
	}
}
