// Package client is a small HTTP client for the vitalsim server's control
// API. It wraps the /status, /set_mode/{mode} and /data endpoints so the CLI
// never touches raw JSON.
package client
