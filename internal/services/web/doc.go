// Package web serves the dice service as a JSON HTTP API.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/systems
//	POST /v1/systems/{system}/roll   {"command": "...", "seed": "..."}
//
// Errors are JSON bodies of the form {"code": "...", "message": "..."} with
// the message localized from the Accept-Language header.
package web
