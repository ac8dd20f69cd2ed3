package graphmail

import "fmt"

// UnreachableKind distinguishes why the remote service could not be reached.
type UnreachableKind string

const (
	// UnreachableNetwork covers DNS failures, refused connections and
	// timeouts while talking to the remote endpoint.
	UnreachableNetwork UnreachableKind = "network"
	// UnreachableUnknown covers any other unexpected failure during the
	// token flow, such as an unparseable response.
	UnreachableUnknown UnreachableKind = "unknown"
)

// ConfigError reports a missing or invalid required setting. It is always
// raised before any network activity and is never retried.
type ConfigError struct {
	Setting string // name of the offending setting, e.g. "tenant"
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Setting, e.Reason)
}

// AuthError reports that the token endpoint rejected the credentials or the
// request itself (any 4xx/5xx response). Code and Description carry the
// remote error fields from the response body when present.
type AuthError struct {
	Status      int    // HTTP status returned by the token endpoint
	Code        string // remote "error" field, e.g. "invalid_client"
	Description string // remote "error_description" field
}

func (e *AuthError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("token endpoint responded with HTTP %d", e.Status)
	}
	return fmt.Sprintf("token endpoint responded with HTTP %d: %s: %s", e.Status, e.Code, e.Description)
}

// UnreachableError reports a failure to complete a request against a remote
// endpoint. Kind separates plain network trouble from unexpected failures.
type UnreachableError struct {
	Kind UnreachableKind
	Err  error
}

func (e *UnreachableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("service unreachable (%s error)", e.Kind)
	}
	return fmt.Sprintf("service unreachable (%s error): %v", e.Kind, e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}

// DeliveryError reports that the sendMail endpoint responded with a non-2xx
// status. Body carries the response body, if any, for diagnostics.
type DeliveryError struct {
	Status int
	Body   string
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sendmail endpoint responded with HTTP %d", e.Status)
	}
	return fmt.Sprintf("sendmail endpoint responded with HTTP %d: %s", e.Status, e.Body)
}
