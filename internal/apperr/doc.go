// Package apperr defines the error kinds shared by every AssetFlow domain package.
//
// Each domain package declares its own sentinel errors and wraps one of the
// kinds below, so a caller can match either the precise error or its kind:
//
//	if errors.Is(err, device.ErrDuplicateSerial) { ... } // precise
//	if errors.Is(err, apperr.ErrDuplicate) { ... }       // any duplicate
//
// The lifecycle coordinator branches on kinds to decide whether a partially
// applied operation must be compensated; the REST adapter maps kinds to HTTP
// status codes.
package apperr
