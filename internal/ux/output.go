package ux

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jorge-barreto/drivectl/internal/ops"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// SimHeader prints the banner for a simulation run.
func SimHeader(robot, routine string, ticks int, period time.Duration) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	fmt.Printf("%s[%s]%s  %s%s: %d ticks at %s (autonomous: %s)%s\n",
		Dim, timestamp(), Reset, Bold, robot, ticks, period, routine, Reset)
	fmt.Printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// SimComplete prints the summary line after a simulation.
func SimComplete(ticks, overruns uint64, maxTick time.Duration) {
	color := Green
	if overruns > 0 {
		color = Yellow
	}
	fmt.Printf("\n%s[%s]%s  %s%s══ %d ticks, %d overruns, max tick %s ══%s\n\n",
		Dim, timestamp(), Reset, Bold, color, ticks, overruns, maxTick.Round(time.Microsecond), Reset)
}

// Fail prints an error line.
func Fail(msg string) {
	fmt.Printf("%s[%s]%s  %s✗ %s%s\n", Dim, timestamp(), Reset, Red, msg, Reset)
}

// FormatFrame renders the watched operations of one frame on a single line.
func FormatFrame(at time.Duration, v ops.Reader, watch []ops.Op) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%st=%6.2fs%s", Dim, at.Seconds(), Reset)
	for _, op := range watch {
		b.WriteString("  ")
		if d, ok := op.Digital(); ok {
			if v.Digital(d) {
				fmt.Fprintf(&b, "%s%s%s", Green, d, Reset)
			} else {
				fmt.Fprintf(&b, "%s%s%s", Dim, d, Reset)
			}
			continue
		}
		a, _ := op.Analog()
		fmt.Fprintf(&b, "%s=%.2f", a, v.Analog(a))
	}
	return b.String()
}

// Frame writes one rendered frame line to w.
func Frame(w io.Writer, at time.Duration, v ops.Reader, watch []ops.Op) {
	fmt.Fprintln(w, FormatFrame(at, v, watch))
}

// TaskLine renders a finished task activation.
func TaskLine(name, owner, outcome string, ran time.Duration) string {
	color := Green
	mark := "✓"
	if outcome != "completed" {
		color = Yellow
		mark = "–"
	}
	return fmt.Sprintf("  %s%s %-32s%s %s%-18s%s %s", color, mark, name, Reset, Dim, owner, Reset, ran.Round(time.Millisecond))
}
