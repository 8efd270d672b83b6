package types

// Envelope is the body of every JSON API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
