// Package identity carries the caller's authorization key through a request.
//
// An Identity names the acting user plus request context (client IP, request
// ID) that ends up in audit events. Authentication, i.e. turning a bearer
// token into a user ID, happens before an Identity is built.
//
// # Basic Usage
//
//	who := identity.ForUser(42).
//	    WithRemoteIP(clientIP).
//	    WithRequestID(requestID)
//
//	o := engine.AttemptCreate(ctx, who, payload)
package identity
