package llm

import "strings"

// ErrorCategory is a coarse classification of backend failures, used
// to pick a user-facing message. Anything unrecognized is generic.
type ErrorCategory int

const (
	ErrorGeneric ErrorCategory = iota
	ErrorCredential
	ErrorQuota
)

// ClassifyError maps a backend error onto an ErrorCategory by
// inspecting its text. Provider SDKs wrap transport errors in too many
// layers to switch on types reliably, so this matches the markers the
// Gemini and OpenAI APIs actually put in their messages.
func ClassifyError(err error) ErrorCategory {
	if err == nil {
		return ErrorGeneric
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") ||
		strings.Contains(msg, "unauthenticated") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "401") ||
		strings.Contains(msg, "403"):
		return ErrorCredential
	case strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429"):
		return ErrorQuota
	default:
		return ErrorGeneric
	}
}

// UserMessage returns the Dutch user-facing message for a backend
// error. The raw error text is never shown to end users.
func UserMessage(err error) string {
	switch ClassifyError(err) {
	case ErrorCredential:
		return "Ongeldige API-sleutel. Controleer je configuratie."
	case ErrorQuota:
		return "API-limiet bereikt. Probeer het later opnieuw."
	default:
		return "Er is een fout opgetreden bij het verwerken van je bericht"
	}
}
