package utils

// Envelope is the uniform response body returned by every endpoint, for both
// successes and failures.
type Envelope struct {
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

// OK builds a success envelope.
func OK(status int, message string, data interface{}) Envelope {
	return Envelope{
		Data:    data,
		Success: true,
		Error:   false,
		Message: message,
		Status:  status,
	}
}

// Fail builds a failure envelope. Failed operations may still carry data, e.g.
// the unverified-login response ships usable credentials alongside the error.
func Fail(status int, message string, data interface{}) Envelope {
	return Envelope{
		Data:    data,
		Success: false,
		Error:   true,
		Message: message,
		Status:  status,
	}
}
