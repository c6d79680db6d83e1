package components

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case KindBlob:
		return "blob"
	case KindFood:
		return "food"
	}
	return "unknown"
}

// String returns the display name for a Mode.
func (m Mode) String() string {
	names := ModeNames()
	if int(m) < len(names) {
		return names[m]
	}
	return "unknown"
}

// ModeNames returns the display names for all modes.
// The order matches the Mode constants.
func ModeNames() []string {
	return []string{"roaming", "fleeing", "pursuing", "held"}
}
