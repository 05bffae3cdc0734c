package trace

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TraceLexer tokenises the text trace format:
//
//	# start      end          signals
//	0.000000000  0.000000500  tms=1 tdi=0 tdo=1
var TraceLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},

	// Whitespace, newlines included; records are self-delimiting
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Decimal or exponent notation, used for timestamps and levels
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},

	// Signal names and symbolic levels (high/low/true/false)
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Assign", Pattern: `=`},
})
