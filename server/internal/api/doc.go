// Package api implements the vitalsim HTTP surface.
//
// Routes:
//   - GET  /status           — current generation mode
//   - POST /set_mode/{mode}  — switch mode; 400 with an explanatory message
//     for anything outside stopped|normal|abnormal
//   - GET  /data             — next generated point ([] while stopped)
//   - GET  /alerts           — active alerts from the rule engine
//
// All responses are JSON. Point emission funnels through Handler.Emit so the
// polling endpoint and the WebSocket stream share one instrumentation and
// alert-evaluation path.
package api
