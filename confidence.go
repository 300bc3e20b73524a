package pricecap

import "fmt"

// Confidence is the discrete trust level assigned to an extraction.
// Levels are ordered: ConfidenceNone < ConfidenceLow < ConfidenceMedium < ConfidenceHigh.
type Confidence int

// Confidence levels.
const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[Confidence]string{
	ConfidenceNone:   "NONE",
	ConfidenceLow:    "LOW",
	ConfidenceMedium: "MEDIUM",
	ConfidenceHigh:   "HIGH",
}

// String returns the upper-case level name.
func (c Confidence) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Confidence(%d)", int(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(text []byte) error {
	parsed, err := ParseConfidence(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseConfidence parses a level name such as "HIGH".
func ParseConfidence(s string) (Confidence, error) {
	for level, name := range confidenceNames {
		if name == s {
			return level, nil
		}
	}
	return ConfidenceNone, Errorf(EINVALID, "unknown confidence %q", s)
}

// Min returns the lower of c and other.
func (c Confidence) Min(other Confidence) Confidence {
	if other < c {
		return other
	}
	return c
}
