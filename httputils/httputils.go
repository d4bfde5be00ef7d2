package httputils

// RequestError is the JSON error envelope returned by the HTTP API
type RequestError struct {
	Error string `json:"error"`
}
