package api

// HTTPError is returned by endpoint handlers. Message is sent to the client,
// ErrorLog only to the server log.
type HTTPError struct {
	StatusCode int
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.ErrorLog
}

type ApiError struct {
	Error string `json:"message"`
}
