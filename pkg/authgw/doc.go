// Package authgw is the HTTP boundary between the authentication flow
// controller and the remote authentication service.
//
// It owns no UI state: it serializes request bodies, attaches the caller's
// identity header and session cookie, interprets status codes (including the
// 206 step-up signal and the implicit-logout 401 path) and normalizes
// failures into a small error taxonomy.
package authgw
