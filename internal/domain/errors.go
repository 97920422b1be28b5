package domain

import "fmt"

// TransportError reports that the upstream fetch never completed: connection
// failure, DNS error, or the 30-second timeout budget expiring.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("weather upstream unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError reports a non-2xx upstream status whose body decoded as the
// APIError envelope.
type UpstreamError struct {
	Status   int
	Code     int
	Name     string
	ErrorMsg string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.ErrorMsg)
}

// OpaqueUpstreamError reports a non-2xx upstream status whose body did not
// match the APIError envelope. The raw body text is retained for diagnostics.
type OpaqueUpstreamError struct {
	Status int
	Body   string
}

func (e *OpaqueUpstreamError) Error() string {
	return fmt.Sprintf("error from weather API: %s", e.Body)
}
