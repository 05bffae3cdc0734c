package trace

import "github.com/alecthomas/participle/v2/lexer"

// TextFile is a parsed text trace.
type TextFile struct {
	Records []*Record `@@*`
}

// Record is one sample line: a time interval followed by signal assignments.
// Example: 0.000010 0.000020 tms=0 tdi=1 tdo=0
type Record struct {
	Pos lexer.Position

	Start   float64   `@Number`
	End     float64   `@Number`
	Signals []*Signal `@@+`
}

// Signal is a single name=level assignment.
type Signal struct {
	Pos lexer.Position

	Name  string `@Ident Assign`
	Level string `@( Number | Ident )`
}
