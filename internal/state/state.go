package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// State is the summary of one controller run.
type State struct {
	RunID    string    `json:"run_id"`
	Robot    string    `json:"robot"`
	Routine  string    `json:"routine,omitempty"`
	Status   string    `json:"status"` // running, completed, failed, interrupted
	Started  time.Time `json:"started"`
	Period   string    `json:"period"`
	Ticks    uint64    `json:"ticks"`
	Overruns uint64    `json:"overruns"`
	MaxTick  string    `json:"max_tick"`
}

// New starts a journal entry for a fresh run.
func New(robot string, period time.Duration) *State {
	return &State{
		RunID:   uuid.NewString(),
		Robot:   robot,
		Status:  StatusRunning,
		Started: time.Now().UTC(),
		Period:  period.String(),
	}
}

func statePath(dir string) string {
	return filepath.Join(dir, "state.json")
}

// Load reads the state from the journal directory. Returns a new state if not found.
func Load(dir string) (*State, error) {
	path := statePath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &State{Status: StatusRunning}, nil
		}
		return nil, err
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the state to the journal directory.
func (s *State) Save(dir string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(statePath(dir), data, 0644)
}

// Record copies loop statistics into the state.
func (s *State) Record(ticks, overruns uint64, maxTick time.Duration) {
	s.Ticks = ticks
	s.Overruns = overruns
	s.MaxTick = maxTick.String()
}
