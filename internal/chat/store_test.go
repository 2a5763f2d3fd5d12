package chat

import (
	"testing"

	"github.com/diogo/gemchat/internal/models"
)

func TestStoreAppendOrder(t *testing.T) {
	store := NewStore()

	store.AppendModel("greeting")
	store.AppendUser("first question")
	placeholder, err := store.AppendPlaceholder()
	if err != nil {
		t.Fatalf("AppendPlaceholder() error = %v", err)
	}

	msgs := store.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}

	wantRoles := []models.Role{models.RoleModel, models.RoleUser, models.RoleModel}
	for i, want := range wantRoles {
		if msgs[i].Role != want {
			t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, want)
		}
	}

	seen := make(map[string]bool)
	for _, m := range msgs {
		if m.ID == "" {
			t.Error("message has empty id")
		}
		if seen[m.ID] {
			t.Errorf("duplicate id %s", m.ID)
		}
		seen[m.ID] = true
	}

	if msgs[2].ID != placeholder.ID || !msgs[2].Streaming || msgs[2].Text != "" {
		t.Errorf("placeholder record = %+v, want empty streaming record", msgs[2])
	}
}

func TestStoreSnapshotPurity(t *testing.T) {
	store := NewStore()
	store.AppendUser("hello")

	snapshot := store.Messages()
	snapshot[0].Text = "mutated"

	if got := store.Messages()[0].Text; got != "hello" {
		t.Errorf("store text = %q after snapshot mutation, want %q", got, "hello")
	}
}

func TestStoreFragmentAccumulation(t *testing.T) {
	store := NewStore()
	placeholder, err := store.AppendPlaceholder()
	if err != nil {
		t.Fatalf("AppendPlaceholder() error = %v", err)
	}

	fragments := []string{"f1", "f2", "f3"}
	want := []string{"f1", "f1f2", "f1f2f3"}

	var snapshots []string
	for _, f := range fragments {
		if err := store.ApplyFragment(placeholder.ID, f); err != nil {
			t.Fatalf("ApplyFragment(%q) error = %v", f, err)
		}
		msgs := store.Messages()
		snapshots = append(snapshots, msgs[len(msgs)-1].Text)
	}

	if len(snapshots) != len(want) {
		t.Fatalf("snapshots = %v, want %v", snapshots, want)
	}
	for i := range want {
		if snapshots[i] != want[i] {
			t.Errorf("snapshot[%d] = %q, want %q", i, snapshots[i], want[i])
		}
	}

	if err := store.Finalize(placeholder.ID); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	final := store.Messages()[0]
	if final.Streaming || final.Text != "f1f2f3" {
		t.Errorf("finalized record = %+v, want frozen f1f2f3", final)
	}

	// Frozen records accept no further fragments
	if err := store.ApplyFragment(placeholder.ID, "late"); err == nil {
		t.Error("ApplyFragment() after Finalize = nil, want error")
	}
}

func TestStoreFailDiscardsPartialText(t *testing.T) {
	store := NewStore()
	placeholder, _ := store.AppendPlaceholder()

	_ = store.ApplyFragment(placeholder.ID, "f1")
	_ = store.ApplyFragment(placeholder.ID, "f2")

	if err := store.Fail(placeholder.ID, StreamErrorText); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}

	got := store.Messages()[0]
	if got.Text != StreamErrorText {
		t.Errorf("failed record text = %q, want %q", got.Text, StreamErrorText)
	}
	if got.Streaming {
		t.Error("failed record still streaming")
	}
}

func TestStoreSinglePendingPlaceholder(t *testing.T) {
	store := NewStore()
	first, _ := store.AppendPlaceholder()

	if _, err := store.AppendPlaceholder(); err == nil {
		t.Error("second AppendPlaceholder() = nil, want error while one is streaming")
	}

	_ = store.Finalize(first.ID)
	if _, err := store.AppendPlaceholder(); err != nil {
		t.Errorf("AppendPlaceholder() after Finalize error = %v", err)
	}
}

func TestStoreApplyFragmentUnknownID(t *testing.T) {
	store := NewStore()
	if err := store.ApplyFragment("missing", "f"); err == nil {
		t.Error("ApplyFragment() with unknown id = nil, want error")
	}
}
