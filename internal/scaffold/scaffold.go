package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/drivectl/internal/ux"
)

var configTemplate = `name: practice-bot
period: 20ms

shifts:
  - {shift: debug, source: driver.back, button: simple}
  - {shift: endgame, source: operator.start, button: toggle}

digital:
  - {op: drive-slow, source: driver.lb}
  - {op: drive-field-centric, source: driver.y, button: toggle}
  - {op: drive-reset-gyro, source: driver.start, button: click, shift: debug}
  - {op: auto-abort, source: driver.b}

analog:
  - {op: drive-x, source: driver.ly, invert: true, deadzone: [-0.08, 0.08], transform: square}
  - {op: drive-y, source: driver.lx, deadzone: [-0.08, 0.08], transform: square}
  - {op: drive-omega, source: driver.rx, deadzone: [-0.1, 0.1]}
  - {op: intake-speed, source: operator.rt}
  - {op: climber-speed, source: operator.ly, invert: true, shift: endgame}

angles:
  - {op: drive-angle, x: driver.rx, y: driver.ry, min-magnitude: 0.5}

macros:
  - {macro: shoot, source: operator.x, mode: press, claims: [shooter-spin, shooter-rpm, feed, hopper-speed]}
  - {macro: drive-to-target, source: driver.a, mode: hold}
  - {macro: hood-close, source: operator.dpad-down}
  - {macro: hood-short, source: operator.dpad-left}
  - {macro: hood-medium, source: operator.dpad-right}
  - {macro: hood-long, source: operator.dpad-up}
  - {macro: intake-extend, source: operator.a, not-shift: endgame}
  - {macro: intake-retract, source: operator.b, not-shift: endgame}
  - {macro: climb, source: operator.y, mode: hold, shift: endgame}
  - {macro: cancel-all, source: operator.back}

autonomous:
  routine: drive-and-shoot

tuning:
  shooter-rpm: 3500
  feed-time: 1s
  target: [2, 0.5]
`

var scriptTemplate = `# Raw input timeline for drivectl sim. Ticks are 20ms apart.
steps:
  - at: 0
    analog: {driver.ly: -0.6}
  - at: 50
    analog: {driver.ly: 0}
    digital: {operator.dpad-up: true}
  - at: 52
    digital: {operator.dpad-up: false}
  - at: 60
    digital: {operator.x: true}
  - at: 62
    digital: {operator.x: false}
  - at: 180
    digital: {operator.start: true}
  - at: 182
    digital: {operator.start: false, operator.y: true}
  - at: 230
    digital: {operator.y: false}
`

// Init writes an example robot.yaml and input script into targetDir.
// minimal selects the drive-only config.
func Init(targetDir string, minimal bool) error {
	configPath := filepath.Join(targetDir, "robot.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("robot.yaml already exists in %s", targetDir)
	}

	simDir := filepath.Join(targetDir, "sim")
	if err := os.MkdirAll(simDir, 0755); err != nil {
		return fmt.Errorf("creating sim/: %w", err)
	}

	tmpl := configTemplate
	if minimal {
		tmpl = minimalConfig
	}
	if err := os.WriteFile(configPath, []byte(tmpl), 0644); err != nil {
		return fmt.Errorf("writing robot.yaml: %w", err)
	}

	scriptPath := filepath.Join(simDir, "teleop.yaml")
	if err := os.WriteFile(scriptPath, []byte(scriptTemplate), 0644); err != nil {
		return fmt.Errorf("writing teleop.yaml: %w", err)
	}

	fmt.Printf("\n%s%s✓ Initialized robot config%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Printf("  Created:\n")
	fmt.Printf("    %srobot.yaml%s        bindings, macros, and tuning\n", ux.Cyan, ux.Reset)
	fmt.Printf("    %ssim/teleop.yaml%s   example input script\n\n", ux.Cyan, ux.Reset)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Edit %srobot.yaml%s to match your controllers\n", ux.Cyan, ux.Reset)
	fmt.Printf("    2. Run %sdrivectl validate%s\n", ux.Cyan, ux.Reset)
	fmt.Printf("    3. Run %sdrivectl sim --script sim/teleop.yaml --auto%s to try it\n\n", ux.Cyan, ux.Reset)

	return nil
}
