// Package allocation records which device is in whose hands.
//
// An allocation is created when a request is approved and stays as history
// after the device comes back. "Active" means not yet returned. At most one
// allocation per device may be active; the Manager re-checks this before
// every insert and the allocations table backs it with a partial unique
// index, so a lost race surfaces as a conflict rather than a second row.
//
// Returns are one-way: recording a return on an allocation that is already
// returned fails with an invalid-state error. Cancel and Reopen exist only so
// the lifecycle coordinator can undo its own half-finished work.
package allocation
