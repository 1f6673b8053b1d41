// Package auth verifies the bearer tokens that identify the actor behind
// a lifecycle request.
//
// Tokens are HS256 JWTs: "sub" carries the actor ID and "role" the actor's
// role (admin, manager or staff). AssetFlow does not manage credentials;
// tokens are issued by whatever sits in front of it, and IssueToken exists
// for tooling and tests.
package auth
