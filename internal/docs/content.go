package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with drivectl",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "robot.yaml schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "bindings",
		Title:   "Input Bindings",
		Summary: "Shifts, button types, dead-zones, angles, and evaluation order",
		Content: topicBindings,
	},
	{
		Name:    "macros",
		Title:   "Macros and Claims",
		Summary: "Press, toggle, and hold macros and how conflicts are resolved",
		Content: topicMacros,
	},
	{
		Name:    "tasks",
		Title:   "Task Model",
		Summary: "Task lifecycle, composites, timed tasks, and cancellation",
		Content: topicTasks,
	},
	{
		Name:    "resolver",
		Title:   "Frame Resolution",
		Summary: "How baseline, latched selections, and overrides combine each tick",
		Content: topicResolver,
	},
	{
		Name:    "journal",
		Title:   "Run Journal",
		Summary: "What a simulation run records and where",
		Content: topicJournal,
	},
}

const topicQuickstart = `Quick Start

drivectl runs the decision layer of a robot controller: every tick it reads
raw controller inputs, maps them onto named operations, runs the active
tasks, and produces one frame of operation values for the mechanisms.

1. Scaffold an example robot:

     drivectl init

   This writes robot.yaml and sim/teleop.yaml in the current directory.

2. Check the config:

     drivectl validate

   Configuration errors are fatal. Unknown operations, ambiguous bindings,
   and macros whose tasks claim more than they are permitted all stop here.

3. Inspect the compiled binding table:

     drivectl bindings

4. Replay the input script against a simulated robot:

     drivectl sim --script sim/teleop.yaml --ticks 250 --watch shooter-rpm,feed

   Add --auto to run the configured autonomous routine first, and
   --journal DIR to record the run.
`

const topicConfig = `Configuration Reference

robot.yaml is loaded once at startup and never reloaded. Unknown keys are
rejected.

  name          string    required
  period        duration  tick period (default 20ms)
  shifts        list      shift layer bindings
  digital       list      digital operation bindings
  analog        list      analog operation bindings
  angles        list      two-axis heading bindings
  macros        list      macro buttons and their permitted claims
  autonomous    map       routine: name (default do-nothing)
  tuning        map       behavior constants

Tuning fields:

  shooter-rpm       float     flywheel setpoint (default 3500)
  rpm-tolerance     float     at-speed window (default 100)
  spin-timeout      duration  spin-up limit before the shot is abandoned (3s)
  feed-time         duration  how long to feed once at speed (1s)
  climb-speed       float     climber output while the climb macro runs (0.8)
  target            [x, y]    drive-to-target position in meters ([2, 0])
  drive-tolerance   float     position tolerance in meters (0.05)
  drive-timeout     duration  drive-to-target limit (4s)
  drive-pid         map       kp, ki, kd, kf, min, max

Autonomous routines: do-nothing, drive-and-shoot, shoot-only, taxi. Every
routine except do-nothing is cancelled when auto-abort reads true.
`

const topicBindings = `Input Bindings

Sources are named device.input, for example driver.lx or operator.a.

Shifts

  Shift layers (debug, operator, endgame) are held by their own bindings and
  evaluated before everything else. Every other binding may carry a gate:

    shift: debug              the layer must be active
    not-shift: [endgame]      the layer must not be active

  A binding whose gate is not satisfied leaves its operation untouched.

Button types (digital and shift bindings)

  simple   mirrors the raw signal
  click    true for exactly one tick on a false->true edge
  toggle   flips on every qualifying rising edge and holds

  Edge history is kept even while a gate is closed, so holding a button and
  then pressing the shift is not a click. The first tick only records each
  button, so one already held at startup is not a press either.

Analog bindings

  The raw value is inverted if asked, mapped to exactly 0 inside the
  dead-zone [low, high], passed through the transform (none, square, cube),
  then multiplied by scale.

Angles

  Two axes become a heading in degrees. Below min-magnitude the previous
  heading is held and the skip flag operation is raised for that tick.

Evaluation order

  Tables are evaluated in file order. When several bindings for one
  operation pass their gates, the last one wins. Two bindings for the same
  operation with identical gates are rejected at startup.
`

const topicMacros = `Macros and Claims

A macro button starts a task. Modes:

  press    each press starts a fresh task that runs until it finishes
  toggle   one press starts, the next cancels
  hold     starts on press, cancelled on release or when its gate closes

claims lists the operations the macro's task may override. Leaving it out
uses the task's own claims. A task that claims more than its macro permits
is a startup error.

When a task starts, every running task whose claims intersect it is
cancelled first, so the most recent claim always wins. Pressing a press
macro while it runs restarts it the same way.

cancel-all cancels every running task and cannot claim operations.
`

const topicTasks = `Task Model

A task moves NotStarted -> Active -> Completed or Cancelled. Begin runs once
on activation and End runs exactly once on the way out, whether the task
finished or was cancelled. End puts every operation the task wrote back to
a neutral value.

Cancellation wins over completion when both are true on the same tick.

Composites

  sequence   runs children in order; the next child begins on the same tick
             the previous one finishes. A cancelled child cancels the
             sequence and later children never begin.
  all        runs children together and completes once all have finished.
             A cancelled child does not stop its siblings.
  any        runs children together and completes when the first child
             completes. The others are cancelled on the same tick.

Ending a composite cancels every child that is still running, all the way
down the tree.

Timed tasks

  Without a completion condition a timed task completes when its duration
  runs out. With one, the duration is a limit and running out cancels it.

Selections

  A selection sets one operation of a mutually exclusive group true and the
  rest false, holds it for 100ms, then completes. The selection stays in
  effect after the task ends.
`

const topicResolver = `Frame Resolution

Each tick produces one frame:

  1. the operator baseline from the bindings
  2. latched selections, which outlive the tasks that set them
  3. overrides from tasks, for operations claimed by a task that was
     active at any point during the tick

Tasks that ended during the tick still count, so their neutral End writes
reach the mechanisms once. Overrides for operations nobody claims any more
are dropped, and the baseline shows through again on the next tick.

Writes to operations outside a task's claims are ignored. A task that panics
is logged and cancelled; other tasks keep running.
`

const topicJournal = `Run Journal

drivectl sim --journal DIR records the run:

  DIR/state.json      run id, robot, routine, status, tick and overrun counts
  DIR/timing.json     one entry per task activation: id, name, owner,
                      start and end on the controller clock, outcome
  DIR/bindings.txt    the compiled binding table the run used

Files are written atomically. drivectl status --journal DIR prints them.
`
