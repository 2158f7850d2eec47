package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimingEntry is one task activation. Start and End are offsets on the
// controller's monotonic clock.
type TimingEntry struct {
	ID       string        `json:"id"`
	Task     string        `json:"task"`
	Owner    string        `json:"owner"`
	Start    time.Duration `json:"start_ns"`
	End      time.Duration `json:"end_ns"`
	Duration string        `json:"duration"`
	Outcome  string        `json:"outcome"`
}

type Timing struct {
	mu      sync.Mutex
	Entries []TimingEntry `json:"entries"`
}

func timingPath(dir string) string {
	return filepath.Join(dir, "timing.json")
}

// LoadTiming reads timing data from the journal directory.
func LoadTiming(dir string) (*Timing, error) {
	path := timingPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Timing{}, nil
		}
		return nil, err
	}
	var t Timing
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Timing) save(dir string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(timingPath(dir), data, 0644)
}

// Add appends a finished activation.
func (t *Timing) Add(e TimingEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e.Duration == "" {
		e.Duration = formatDuration(e.End - e.Start)
	}
	t.Entries = append(t.Entries, e)
}

// Len returns the number of recorded activations.
func (t *Timing) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Entries)
}

// Flush writes the in-memory timing data to disk.
func (t *Timing) Flush(dir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(dir)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
