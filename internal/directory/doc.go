// Package directory owns the employees and departments that requests and
// allocations refer to.
//
// Departments are keyed by their business code. Employees reference a
// department by code and carry a role that is recorded on lifecycle actions
// but never enforced here.
//
// Referential rules:
//
//   - A department cannot be deleted while any employee belongs to it
//     (checked by the Directory, reported as a conflict).
//   - An employee cannot be deleted while requests reference them
//     (enforced by the foreign key, reported as a conflict).
//
// Emails are trimmed and lower-cased before they are stored or compared, so
// "Ann@Example.com " and "ann@example.com" are the same address.
package directory
