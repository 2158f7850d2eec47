package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/jorge-barreto/drivectl/internal/input"
	"github.com/jorge-barreto/drivectl/internal/ops"
	"github.com/jorge-barreto/drivectl/internal/state"
)

// RenderStatus prints the journal of the last run.
func RenderStatus(w io.Writer, st *state.State, dir string) {
	timing, _ := state.LoadTiming(dir)

	fmt.Fprintf(w, "%sRun:%s      %s\n", Bold, Reset, st.RunID)
	fmt.Fprintf(w, "%sRobot:%s    %s\n", Bold, Reset, st.Robot)
	status := st.Status
	switch st.Status {
	case state.StatusCompleted:
		status = Green + status + Reset
	case state.StatusFailed:
		status = Red + status + Reset
	case state.StatusInterrupted:
		status = Yellow + status + Reset
	}
	fmt.Fprintf(w, "%sStatus:%s   %s\n", Bold, Reset, status)
	if st.Routine != "" {
		fmt.Fprintf(w, "%sRoutine:%s  %s\n", Bold, Reset, st.Routine)
	}
	fmt.Fprintf(w, "%sTicks:%s    %d at %s (%d overruns, max %s)\n",
		Bold, Reset, st.Ticks, st.Period, st.Overruns, st.MaxTick)

	if timing == nil || len(timing.Entries) == 0 {
		fmt.Fprintf(w, "\n%sTasks:%s\n  %s(none)%s\n\n", Bold, Reset, Dim, Reset)
		return
	}
	fmt.Fprintf(w, "\n%sTasks:%s\n", Bold, Reset)
	for _, e := range timing.Entries {
		fmt.Fprintf(w, "%s\n", TaskLine(e.Task, e.Owner, e.Outcome, e.End-e.Start))
	}
	fmt.Fprintln(w)
}

// RenderBindings writes the binding table in evaluation order, without color
// so the output can be stored in the journal.
func RenderBindings(w io.Writer, b input.Bindings) {
	if len(b.Shifts) > 0 {
		fmt.Fprintln(w, "shifts:")
		for _, s := range b.Shifts {
			fmt.Fprintf(w, "  %-26s <- %s (%s)\n", s.Shift, s.Source, s.Button)
		}
	}
	if len(b.Digital) > 0 {
		fmt.Fprintln(w, "digital:")
		for _, d := range b.Digital {
			mods := []string{d.Button.String()}
			if d.Invert {
				mods = append(mods, "invert")
			}
			fmt.Fprintf(w, "  %-26s <- %s (%s)%s\n", d.Op, d.Source, strings.Join(mods, ", "), gateSuffix(d.Gate))
		}
	}
	if len(b.Analog) > 0 {
		fmt.Fprintln(w, "analog:")
		for _, a := range b.Analog {
			var mods []string
			if a.Invert {
				mods = append(mods, "invert")
			}
			if a.DeadZone.Lo != 0 || a.DeadZone.Hi != 0 {
				mods = append(mods, fmt.Sprintf("deadzone [%g, %g]", a.DeadZone.Lo, a.DeadZone.Hi))
			}
			if a.Transform != nil {
				mods = append(mods, "transform")
			}
			mods = append(mods, fmt.Sprintf("x%g", a.Scale))
			fmt.Fprintf(w, "  %-26s <- %s (%s)%s\n", a.Op, a.Source, strings.Join(mods, ", "), gateSuffix(a.Gate))
		}
	}
	if len(b.Angles) > 0 {
		fmt.Fprintln(w, "angles:")
		for _, a := range b.Angles {
			fmt.Fprintf(w, "  %-26s <- %s, %s (min %g, skip %s)%s\n", a.Op, a.X, a.Y, a.MinMagnitude, a.SkipFlag, gateSuffix(a.Gate))
		}
	}
	if len(b.Macros) > 0 {
		fmt.Fprintln(w, "macros:")
		for _, m := range b.Macros {
			fmt.Fprintf(w, "  %-26s <- %s (%s)%s\n", m.Macro, m.Source, m.Mode, gateSuffix(m.Gate))
		}
	}
}

func gateSuffix(g ops.Gate) string {
	switch {
	case g.Require == ops.ShiftNone && g.Exclude == ops.ShiftNone:
		return ""
	case g.Exclude == ops.ShiftNone:
		return " [shift " + g.Require.String() + "]"
	case g.Require == ops.ShiftNone:
		return " [not " + g.Exclude.String() + "]"
	}
	return " [shift " + g.Require.String() + ", not " + g.Exclude.String() + "]"
}
