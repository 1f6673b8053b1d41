// Package lifecycle coordinates devices, requests and allocations so the
// three never disagree about who holds a device.
//
// The Coordinator is the only writer of lifecycle state. Each operation
// takes a per-device lock, re-reads state under it, checks the transition
// and then writes through the device registry, request manager and
// allocation manager in order:
//
//	Approve       request pending→approved, allocation opened, device →in_use
//	Reject        request pending→rejected
//	ReturnDevice  allocation closed, request →completed, device →available|maintenance
//
// If a later write fails the earlier ones are undone, so a request is never
// left approved without an allocation and a device is never left in use
// after its allocation was closed.
//
// # Locking
//
// KeyedLocker serialises callers within one process. For several processes
// sharing a database use a distributed Locker (see the redislock package).
// The allocations table also carries a partial unique index, so even a
// misconfigured deployment cannot store two active allocations for a device.
//
// # Notifications
//
// After a transition commits and the device lock is released, an Event is
// passed to every Notifier. Notifier errors are logged at warn level and
// never reported to the caller.
package lifecycle
