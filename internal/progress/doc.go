// Package progress tracks completed versus total work items of a batch run and
// renders that state for a human operator.
//
// State is a plain value owned by the goroutine running the batch; renderers
// only ever receive copies of it, so rendering never affects the work itself.
// Two renderers are provided:
//   - TeaRenderer draws a live bar on a terminal with Bubble Tea
//   - LineRenderer writes one line per step, for pipes, CI logs and --plain
package progress
