package config

import (
	"fmt"

	"github.com/jorge-barreto/drivectl/internal/input"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/scheduler"
)

// Factories supplies the task factories a config refers to by name.
type Factories interface {
	Macro(m ops.Macro) (scheduler.Factory, bool)
	Routine(name string) (scheduler.Factory, bool)
}

// Compiled is a validated config bound to its task factories.
type Compiled struct {
	Layer       *input.Layer
	Macros      []scheduler.Macro
	RoutineName string
	Routine     scheduler.Factory
}

// Compile builds a fresh input layer and the macro registrations. Every
// bound macro must have a factory, and each factory's task must stay inside
// the macro's permitted claims.
func Compile(cfg *Config, f Factories) (*Compiled, error) {
	layer, err := input.New(cfg.bindings)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	macros := make([]scheduler.Macro, 0, len(cfg.macros))
	for _, spec := range cfg.macros {
		factory, ok := f.Macro(spec.macro)
		if !ok {
			return nil, fmt.Errorf("config: macro %q: %w: no task is registered for it", spec.macro, ErrUnknownMacro)
		}
		claims := factory().Claims()
		permitted := spec.claims
		if permitted == nil {
			permitted = claims
		}
		if !claims.SubsetOf(permitted) {
			return nil, fmt.Errorf("config: macro %q: %w: task claims %s, permitted %s",
				spec.macro, scheduler.ErrClaimsExceeded, claims, permitted)
		}
		macros = append(macros, scheduler.Macro{Macro: spec.macro, Claims: permitted, New: factory})
	}

	routine, ok := f.Routine(cfg.Autonomous.Routine)
	if !ok {
		return nil, fmt.Errorf("config: autonomous: %w %q", ErrUnknownRoutine, cfg.Autonomous.Routine)
	}

	return &Compiled{
		Layer:       layer,
		Macros:      macros,
		RoutineName: cfg.Autonomous.Routine,
		Routine:     routine,
	}, nil
}
