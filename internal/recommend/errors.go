package recommend

import "fmt"

// ConfigurationError means the recommender cannot be used until the operator
// fixes its settings. Risk estimation does not depend on it.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("recommendation service not configured: %s %s", e.Setting, e.Reason)
}

// TransportError wraps any failure talking to the completion endpoint:
// network, timeout, authentication, non-2xx or an unusable response.
type TransportError struct {
	// StatusCode is the HTTP status when the endpoint answered, else 0.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
