package update

import (
	"strings"

	"github.com/adamancini/profup/internal/types"
)

// Tokens of the currentProfile response grammar.
const (
	// NoUpdateToken as the entire (trimmed) body means the profile is current.
	NoUpdateToken = "0"
	// BounceToken as the first line means the request must be resent.
	BounceToken = "bounce"
)

// ParseAvailability interprets a currentProfile body.
//
//	"0"             -> false
//	"" or "bounce"  -> *ProtocolError
//	anything else   -> true
func ParseAvailability(body string) (bool, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == NoUpdateToken {
		return false, nil
	}

	firstLine, _, _ := strings.Cut(trimmed, "\n")
	if trimmed == "" || strings.EqualFold(strings.TrimSpace(firstLine), BounceToken) {
		return false, &ProtocolError{Service: types.ServiceCurrentProfile, Body: body}
	}

	return true, nil
}
