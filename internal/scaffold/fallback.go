package scaffold

// minimalConfig drives the robot and nothing else.
const minimalConfig = `name: drive-base
period: 20ms

analog:
  - {op: drive-x, source: driver.ly, invert: true, deadzone: [-0.08, 0.08]}
  - {op: drive-y, source: driver.lx, deadzone: [-0.08, 0.08]}
  - {op: drive-omega, source: driver.rx, deadzone: [-0.1, 0.1]}

macros:
  - {macro: cancel-all, source: driver.back}
`
