// Package types defines the JSON wire types shared by the vitalsim server
// and the ctl command-line client. These are the canonical representations
// of the HTTP API payloads, kept in one place so both binaries agree on the
// schema.
package types
