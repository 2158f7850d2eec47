// Package simio provides simulated robot I/O: a scripted raw input source
// and a simple plant that integrates the resolved frame into sensor readings.
package simio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Step sets raw input values from tick At onwards. Values not named keep
// whatever the previous steps set.
type Step struct {
	At      uint64             `yaml:"at"`
	Digital map[string]bool    `yaml:"digital"`
	Analog  map[string]float64 `yaml:"analog"`
}

// Script is a timeline of raw input changes.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// LoadScript reads a YAML input script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// ParseScript decodes a YAML input script. Steps are ordered by tick; steps
// on the same tick apply in file order.
func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("script: %w", err)
	}
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return &s, nil
}

// Last is the tick of the final step.
func (s *Script) Last() uint64 {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].At
}

// Player replays a Script as a raw input source.
type Player struct {
	script  *Script
	next    int
	digital map[string]bool
	analog  map[string]float64
	reads   map[string]int
}

// NewPlayer returns a player positioned before tick 0.
func NewPlayer(s *Script) *Player {
	return &Player{
		script:  s,
		digital: make(map[string]bool),
		analog:  make(map[string]float64),
		reads:   make(map[string]int),
	}
}

// Advance applies every step scheduled at or before tick.
func (p *Player) Advance(tick uint64) {
	for p.next < len(p.script.Steps) && p.script.Steps[p.next].At <= tick {
		st := p.script.Steps[p.next]
		for k, v := range st.Digital {
			p.digital[k] = v
		}
		for k, v := range st.Analog {
			p.analog[k] = v
		}
		p.next++
	}
}

func (p *Player) Digital(name string) bool {
	p.reads[name]++
	return p.digital[name]
}

func (p *Player) Analog(name string) float64 {
	p.reads[name]++
	return p.analog[name]
}

// Reads reports how many times name has been read.
func (p *Player) Reads(name string) int { return p.reads[name] }
