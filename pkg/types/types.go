package types

// Point is one generated sample of the simulated signal.
type Point struct {
	// Time is the simulated timestamp, ISO-8601 UTC with millisecond precision.
	Time string `json:"time"`

	// Value is the signal value, rounded to two decimal places.
	Value float64 `json:"value"`
}

// StatusResponse is the payload for GET /status.
type StatusResponse struct {
	Mode string `json:"mode"`
}

// SetModeResponse is the payload for POST /set_mode/{mode}.
// On success Status is "success" and NewMode holds the applied mode.
// On failure Status is "error" and Message explains the rejection.
type SetModeResponse struct {
	Status  string `json:"status"`
	NewMode string `json:"new_mode,omitempty"`
	Message string `json:"message,omitempty"`
}
