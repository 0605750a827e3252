// Package config loads the vitalsim server configuration from a YAML file.
//
// Config fields:
//   - Server.HTTPPort        — port for the HTTP API, WebSocket stream and
//     metrics endpoint (default 8080)
//   - Server.Stream.Interval — tick period of the WebSocket point stream
//     (default 100ms, the simulated 10 Hz sampling rate)
//   - Server.Alerts          — alert rule definitions and webhook targets
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) hot-reloads the file on change so alert rules
// can be adjusted without a restart.
package config
