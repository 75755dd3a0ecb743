// Package workflow implements the Temporal workflow definitions of the
// breakdown service.
//
// Workflows only coordinate: every computation over rows and shares runs in
// activities, and workflow code sticks to workflow-safe APIs (no wall clock,
// randomness or I/O) so that replays are deterministic.
package workflow
