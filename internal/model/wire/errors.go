package wire

// Error codes carried on outbound "error" and "ai-error" frames. A code
// plus the originating request type is enough for a client to correlate
// the failure with what it sent.
const (
	CodeInvalidRole         = "invalid_role"
	CodeMissingField        = "missing_field"
	CodeNotRegistered       = "not_registered"
	CodeNotFound            = "not_found"
	CodeInvalidJSON         = "invalid_json"
	CodeUnknownType         = "unknown_type"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeMalformedCompletion = "malformed_completion"
)

// ErrorEvent builds an outbound error frame tagged with the inbound
// message type that caused it.
func ErrorEvent(requestType, code, message string) Event {
	return NewEvent(TypeError, map[string]any{
		"requestType": requestType,
		"code":        code,
		"message":     message,
	})
}
