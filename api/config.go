// Package api is the HTTP boundary of the site-builder gateway.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3001")
	ListenAddr string

	// StaticDir, when set, is served at / for the built editor bundle.
	StaticDir string

	// BodyLimit caps request bodies in bytes. Zero keeps the fiber default.
	BodyLimit int
}
