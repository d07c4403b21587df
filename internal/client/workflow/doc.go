// Package workflow drives a single image from selection to a dish detection.
//
// The state machine is
//
//	Idle -> FileSelected -> Submitting -> Succeeded | Failed
//
// with Succeeded/Failed returning to FileSelected on a new selection or to
// Idle on Replace. At most one detection request is in flight per Workflow:
// the move to Submitting happens under the same lock as the state check, and
// every selection or reset bumps an attempt counter so a late completion can
// never overwrite newer state.
package workflow
