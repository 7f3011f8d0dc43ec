// Package server exposes the player widget over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the middleware the serve command installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Player API
//
// [API] implements [Handler] and maps each widget action to a route:
//
//	GET  /api/state            → current state plus derived labels
//	POST /api/toggle           → play or pause
//	POST /api/seek             → {"position": seconds}
//	POST /api/upload           → multipart "file" part, its Content-Type is the declared media type
//	POST /api/admin/passphrase → {"passphrase": "..."}
//	POST /api/admin/reset      → restore the default track
//	POST /api/admin/lock       → disable uploads for the rest of the process
//	GET  /api/tracks/{ref}     → stream an uploaded track
//
// Errors are returned as {"error": "..."} with a status derived from the sentinel. The admin gate is the same
// plaintext comparison the widget performs and is not access control.
package server
