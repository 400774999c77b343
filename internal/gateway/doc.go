// Package gateway composes the request flows behind the HTTP API.
//
// One ask request flows: validate the message, build a prompt from the
// tuning examples, invoke the provider under a hard deadline, map the
// outcome to a user-facing response, and hand the completed turn to the
// background writer. Persistence is never on the response path: a down
// backend degrades chat history to local-only and nothing else.
//
// The Gateway type owns the HTTP server lifecycle, serving either on a
// plain TCP address or on a Tailscale tsnet node (tailnet HTTP, tailnet
// HTTPS with managed certs, or public funnel).
package gateway
