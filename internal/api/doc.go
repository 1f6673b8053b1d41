// Package api implements the HTTP REST API for AssetFlow.
//
// It exposes the device registry, the employee directory, requests and
// allocations for reading, and routes every lifecycle change (approve,
// reject, return, status change, removal) through the lifecycle coordinator.
//
// # Errors
//
// Core errors are mapped to responses by kind: validation 400, not found 404,
// duplicate, invalid state and conflict 409. Anything else is logged and
// returned as a bare 500.
//
// # Actor identity
//
// Mutating routes need an actor. With a JWT secret configured it comes from
// an HS256 Bearer token ("sub" and "role" claims); without one, from the
// X-Actor-ID and X-Actor-Role headers. Authorisation decisions are left to
// whatever issues the tokens.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
