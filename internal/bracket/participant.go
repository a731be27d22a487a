package bracket

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const MaxParticipantNameLength = 50

// NormalizeParticipantName trims the display name and checks it is usable as a key.
func NormalizeParticipantName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidParticipant)
	}
	if utf8.RuneCountInString(name) > MaxParticipantNameLength {
		return "", fmt.Errorf("%w: name %q exceeds %d characters", ErrInvalidParticipant, name, MaxParticipantNameLength)
	}
	return name, nil
}
