package sharelink

import "fmt"

// Reason classifies why a share token was rejected.
type Reason string

// Reasons reported by Decode.
const (
	ReasonMissing     Reason = "missing"
	ReasonTooLong     Reason = "too_long"
	ReasonMalformed   Reason = "malformed"
	ReasonEncoding    Reason = "encoding"
	ReasonChecksum    Reason = "checksum"
	ReasonNotUTF8     Reason = "not_utf8"
	ReasonNotJSON     Reason = "not_json"
	ReasonInvalidData Reason = "invalid_data"
)

// InvalidShareLinkError is returned for any token that cannot be turned back into a valid result.
type InvalidShareLinkError struct {
	Reason Reason
	Cause  error
}

func (e *InvalidShareLinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid share link (%s): %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid share link (%s)", e.Reason)
}

func (e *InvalidShareLinkError) Unwrap() error {
	return e.Cause
}

func invalid(reason Reason, cause error) error {
	return &InvalidShareLinkError{Reason: reason, Cause: cause}
}
