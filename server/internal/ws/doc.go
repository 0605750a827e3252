// Package ws streams simulator points to WebSocket clients.
//
// The Hub owns all client connections and runs a single ticker loop that
// pulls one point from the generator per tick and fans it out to every
// connected client. No points are pulled while nobody is connected, so the
// stream never advances the waveform behind the HTTP API's back.
package ws
