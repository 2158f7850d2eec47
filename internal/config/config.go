package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/drivectl/internal/behaviors"
	"github.com/jorge-barreto/drivectl/internal/input"
)

// ShiftList accepts either a single shift name or a list of them.
type ShiftList []string

func (s *ShiftList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*s = ShiftList{n.Value}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

type ShiftEntry struct {
	Shift  string `yaml:"shift"`
	Source string `yaml:"source"`
	Button string `yaml:"button"`
}

type DigitalEntry struct {
	Op       string    `yaml:"op"`
	Source   string    `yaml:"source"`
	Button   string    `yaml:"button"`
	Invert   bool      `yaml:"invert"`
	Shift    ShiftList `yaml:"shift"`
	NotShift ShiftList `yaml:"not-shift"`
}

type AnalogEntry struct {
	Op        string    `yaml:"op"`
	Source    string    `yaml:"source"`
	Invert    bool      `yaml:"invert"`
	DeadZone  []float64 `yaml:"deadzone"`
	Scale     float64   `yaml:"scale"`
	Transform string    `yaml:"transform"`
	Shift     ShiftList `yaml:"shift"`
	NotShift  ShiftList `yaml:"not-shift"`
}

type AngleEntry struct {
	Op           string    `yaml:"op"`
	X            string    `yaml:"x"`
	Y            string    `yaml:"y"`
	InvertX      bool      `yaml:"invert-x"`
	InvertY      bool      `yaml:"invert-y"`
	MinMagnitude float64   `yaml:"min-magnitude"`
	SkipFlag     string    `yaml:"skip-flag"`
	Shift        ShiftList `yaml:"shift"`
	NotShift     ShiftList `yaml:"not-shift"`
}

type MacroEntry struct {
	Macro    string    `yaml:"macro"`
	Source   string    `yaml:"source"`
	Mode     string    `yaml:"mode"`
	Claims   []string  `yaml:"claims"`
	Shift    ShiftList `yaml:"shift"`
	NotShift ShiftList `yaml:"not-shift"`
}

type Autonomous struct {
	Routine string `yaml:"routine"`
}

type Gains struct {
	KP  float64 `yaml:"kp"`
	KI  float64 `yaml:"ki"`
	KD  float64 `yaml:"kd"`
	KF  float64 `yaml:"kf"`
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type TuningEntry struct {
	ShooterRPM     float64   `yaml:"shooter-rpm"`
	RPMTolerance   float64   `yaml:"rpm-tolerance"`
	SpinTimeout    string    `yaml:"spin-timeout"`
	FeedTime       string    `yaml:"feed-time"`
	ClimbSpeed     float64   `yaml:"climb-speed"`
	Target         []float64 `yaml:"target"`
	DriveTolerance float64   `yaml:"drive-tolerance"`
	DriveTimeout   string    `yaml:"drive-timeout"`
	DrivePID       *Gains    `yaml:"drive-pid"`
}

type Config struct {
	Name       string         `yaml:"name"`
	Period     string         `yaml:"period"`
	Shifts     []ShiftEntry   `yaml:"shifts"`
	Digital    []DigitalEntry `yaml:"digital"`
	Analog     []AnalogEntry  `yaml:"analog"`
	Angles     []AngleEntry   `yaml:"angles"`
	Macros     []MacroEntry   `yaml:"macros"`
	Autonomous Autonomous     `yaml:"autonomous"`
	Tuning     TuningEntry    `yaml:"tuning"`

	// Filled in by Validate.
	TickPeriod time.Duration `yaml:"-"`
	bindings   input.Bindings
	macros     []macroSpec
	tuning     behaviors.Tuning
}

// Load reads a YAML config file and returns a validated Config. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a config document.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: empty document")
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bindings returns the resolved binding table. Only valid after Validate.
func (c *Config) Bindings() input.Bindings { return c.bindings }

// Tuning returns the behavior constants with defaults applied.
func (c *Config) BehaviorTuning() behaviors.Tuning { return c.tuning }
