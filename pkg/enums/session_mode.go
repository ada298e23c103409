package enums

import "fmt"

// SessionMode distinguishes a guest session from an authenticated one.
type SessionMode string

const (
	SessionModeGuest         SessionMode = "guest"
	SessionModeAuthenticated SessionMode = "authenticated"
)

var validSessionModes = []SessionMode{
	SessionModeGuest,
	SessionModeAuthenticated,
}

// String implements fmt.Stringer.
func (m SessionMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known SessionMode.
func (m SessionMode) IsValid() bool {
	for _, candidate := range validSessionModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSessionMode converts raw input into a SessionMode.
func ParseSessionMode(value string) (SessionMode, error) {
	for _, candidate := range validSessionModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session mode %q", value)
}
