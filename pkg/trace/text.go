package trace

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/tapdecode/pkg/decoder"
)

// ErrMalformed is wrapped by every content error reported by the readers.
var ErrMalformed = errors.New("trace: malformed input")

// TextParser reads the line-oriented text trace format.
type TextParser struct {
	parser *participle.Parser[TextFile]
}

// NewTextParser builds the grammar.
func NewTextParser() (*TextParser, error) {
	parser, err := participle.Build[TextFile](
		participle.Lexer(TraceLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return &TextParser{parser: parser}, nil
}

// Parse reads a complete text trace and converts it to frames.
func (p *TextParser) Parse(name string, r io.Reader) ([]decoder.Frame, error) {
	file, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return recordsToFrames(file.Records)
}

// ParseString is Parse over an in-memory trace.
func (p *TextParser) ParseString(input string) ([]decoder.Frame, error) {
	return p.Parse("", strings.NewReader(input))
}

func recordsToFrames(records []*Record) ([]decoder.Frame, error) {
	frames := make([]decoder.Frame, 0, len(records))
	for _, rec := range records {
		f, err := rec.frame()
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func (r *Record) frame() (decoder.Frame, error) {
	f := decoder.Frame{
		Start: secondsToDuration(r.Start),
		End:   secondsToDuration(r.End),
	}
	if f.End < f.Start {
		return f, fmt.Errorf("%w: %s: end %v before start %v", ErrMalformed, r.Pos, f.End, f.Start)
	}

	seen := map[string]bool{}
	for _, sig := range r.Signals {
		name := strings.ToLower(sig.Name)
		if seen[name] {
			return f, fmt.Errorf("%w: %s: %s given twice", ErrMalformed, sig.Pos, name)
		}
		seen[name] = true

		level, err := ParseLevel(sig.Level)
		if err != nil {
			return f, fmt.Errorf("%w: %s: %s: %v", ErrMalformed, sig.Pos, name, err)
		}
		switch name {
		case "tms":
			f.TMS = level
		case "tdi":
			f.TDI = level
		case "tdo":
			f.TDO = level
		default:
			return f, fmt.Errorf("%w: %s: unknown signal %q", ErrMalformed, sig.Pos, sig.Name)
		}
	}
	for _, name := range []string{"tms", "tdi", "tdo"} {
		if !seen[name] {
			return f, fmt.Errorf("%w: %s: missing %s", ErrMalformed, r.Pos, name)
		}
	}
	return f, nil
}

// ParseLevel interprets a logic level: 0/1, true/false, high/low or h/l.
func ParseLevel(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "high", "h":
		return true, nil
	case "0", "false", "low", "l":
		return false, nil
	}
	return false, fmt.Errorf("invalid level %q", s)
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(math.Round(sec * float64(time.Second)))
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func level(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteFrames renders frames in the text trace format.
func WriteFrames(w io.Writer, frames []decoder.Frame) error {
	for _, f := range frames {
		_, err := fmt.Fprintf(w, "%s %s tms=%d tdi=%d tdo=%d\n",
			formatSeconds(f.Start), formatSeconds(f.End), level(f.TMS), level(f.TDI), level(f.TDO))
		if err != nil {
			return err
		}
	}
	return nil
}
