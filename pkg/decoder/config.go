package decoder

import (
	"errors"
	"fmt"
)

// Mode is the two-way choice exposed by capture front-ends.
type Mode string

const (
	ModeA Mode = "A"
	ModeB Mode = "B"
)

// ErrInvalidSettings is wrapped by Settings.Validate failures.
var ErrInvalidSettings = errors.New("decoder: invalid settings")

// Settings carries the options a capture front-end hands to the analyzer.
// They are validated and reported but do not alter decoding; the state table
// and the MSP430 instruction table are fixed.
type Settings struct {
	Label string // free text
	Level int    // 0..100
	Mode  Mode   // ModeA or ModeB
}

// DefaultSettings returns the settings used when none are supplied.
func DefaultSettings() Settings {
	return Settings{
		Label: "",
		Level: 0,
		Mode:  ModeA,
	}
}

// Validate checks ranges and choices.
func (s Settings) Validate() error {
	if s.Level < 0 || s.Level > 100 {
		return fmt.Errorf("%w: level %d outside 0..100", ErrInvalidSettings, s.Level)
	}
	switch s.Mode {
	case ModeA, ModeB:
	default:
		return fmt.Errorf("%w: mode %q, want A or B", ErrInvalidSettings, s.Mode)
	}
	return nil
}

func (s Settings) String() string {
	return fmt.Sprintf("label=%q level=%d mode=%s", s.Label, s.Level, s.Mode)
}
