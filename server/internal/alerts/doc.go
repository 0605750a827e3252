// Package alerts implements the rule evaluation engine and webhook delivery
// for vitalsim. Rules are evaluated against every generated point; webhooks
// are delivered to Slack, Teams, or generic HTTP targets when an alert fires
// or resolves.
package alerts
