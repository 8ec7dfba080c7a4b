// Package tasks implements a small multi-tenant to-do service with cookie
// based session authentication.
//
// Sessions:
//   - Passwords are stored as bcrypt hashes. Login exchanges credentials for a
//     signed HS256 token carrying sub, iat and exp, delivered in an HTTPOnly
//     cookie. TokenService owns signing and validation; the signing key is
//     injected at construction and never read from ambient state.
//   - The sessionware middleware resolves the cookie into a Session stored in
//     the request Locals. Anonymous requests never reach a handler or the
//     store, they are rejected with 401 up front.
//
// Ownership:
//   - Every task read and mutation is scoped by the owner id taken from the
//     session. A task that belongs to someone else is reported as missing,
//     never as forbidden, so the API does not leak which ids exist.
//
// Admin surface:
//   - /api/admin routes are gated by a shared secret in the X-Admin-Key
//     header, compared in constant time. Leaving the secret unset disables
//     the surface.
package tasks
