package state

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLoad_NoExistingState(t *testing.T) {
	st, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != StatusRunning {
		t.Fatalf("Status = %q, want running", st.Status)
	}
	if st.Ticks != 0 {
		t.Fatalf("Ticks = %d, want 0", st.Ticks)
	}
}

func TestNew_AssignsRunID(t *testing.T) {
	a := New("practice-bot", 20*time.Millisecond)
	b := New("practice-bot", 20*time.Millisecond)
	if _, err := uuid.Parse(a.RunID); err != nil {
		t.Fatalf("RunID %q is not a uuid: %v", a.RunID, err)
	}
	if a.RunID == b.RunID {
		t.Fatal("run ids must be unique")
	}
	if a.Period != "20ms" {
		t.Fatalf("Period = %q", a.Period)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := New("practice-bot", 20*time.Millisecond)
	original.Routine = "shoot-only"
	original.Status = StatusCompleted
	original.Record(500, 3, 27*time.Millisecond)
	if err := original.Save(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RunID != original.RunID {
		t.Fatalf("RunID = %q, want %q", loaded.RunID, original.RunID)
	}
	if loaded.Ticks != 500 || loaded.Overruns != 3 {
		t.Fatalf("Ticks/Overruns = %d/%d", loaded.Ticks, loaded.Overruns)
	}
	if loaded.MaxTick != "27ms" {
		t.Fatalf("MaxTick = %q", loaded.MaxTick)
	}
	if loaded.Status != StatusCompleted || loaded.Routine != "shoot-only" {
		t.Fatalf("Status/Routine = %q/%q", loaded.Status, loaded.Routine)
	}
}

func TestTiming_AddAndFlush(t *testing.T) {
	dir := t.TempDir()
	tm, err := LoadTiming(dir)
	if err != nil {
		t.Fatal(err)
	}
	tm.Add(TimingEntry{ID: "a", Task: "shoot", Owner: "macro:shoot", Start: 0, End: 1240 * time.Millisecond, Outcome: "completed"})
	tm.Add(TimingEntry{ID: "b", Task: "climb", Start: time.Second, End: 1500 * time.Millisecond, Outcome: "cancelled"})
	if tm.Len() != 2 {
		t.Fatalf("Len = %d", tm.Len())
	}
	if err := tm.Flush(dir); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadTiming(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Entries) != 2 {
		t.Fatalf("entries = %d", len(loaded.Entries))
	}
	if got := loaded.Entries[0].Duration; got != "1.24s" {
		t.Fatalf("Duration = %q, want 1.24s", got)
	}
	if got := loaded.Entries[1].Duration; got != "500ms" {
		t.Fatalf("Duration = %q, want 500ms", got)
	}
}
