package rewrite

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strings"

	"github.com/npillmayer/haspoly/alias"
)

// keyword is the name of the relational pseudo-class.
const keyword = "has"

// State is the state of the scanner.
type State uint8

// States of the scanner. InAtBlock and InStyleBlock are block states, kept on a
// stack; the others describe the position within a prelude.
const (
	Default            State = iota // in a selector prelude
	InAtSelector                    // in the prelude of an at-rule
	InAtBlock                       // in the block of an at-rule
	InStyleBlock                    // in a declaration block
	InPseudoName                    // after ':' in a selector prelude
	InRelationalClause              // inside the parentheses of ':has('
)

func (st State) String() string {
	switch st {
	case Default:
		return "Default"
	case InAtSelector:
		return "InAtSelector"
	case InAtBlock:
		return "InAtBlock"
	case InStyleBlock:
		return "InStyleBlock"
	case InPseudoName:
		return "InPseudoName"
	case InRelationalClause:
		return "InRelationalClause"
	}
	return "?"
}

// Rewriter replaces relational clauses in stylesheets and records the
// resulting aliases in a registry.
type Rewriter struct {
	registry *alias.Registry
}

// New creates a rewriter which registers aliases with reg.
func New(reg *alias.Registry) *Rewriter {
	if reg == nil {
		reg = alias.NewRegistry()
	}
	return &Rewriter{registry: reg}
}

// Registry returns the registry the rewriter is feeding.
func (rw *Rewriter) Registry() *alias.Registry {
	return rw.registry
}

// Rewrite scans css and replaces every relational clause by a marker class.
// It returns the rewritten text and the new aliases, in order of appearance.
// Text without relational clauses is returned unchanged.
func (rw *Rewriter) Rewrite(css string) (string, []alias.Alias) {
	sc := newScanner(css, rw.registry)
	sc.run()
	if len(sc.found) > 0 {
		tracer().Debugf("rewrote %d relational clause(s)", len(sc.found))
	}
	return sc.text, sc.found
}

// Rewrite is a shortcut for New(reg).Rewrite(css).
func Rewrite(css string, reg *alias.Registry) (string, []alias.Alias) {
	return New(reg).Rewrite(css)
}

// --- Scanner ---------------------------------------------------------------

type scanner struct {
	registry *alias.Registry
	text     string  // working copy, changes with every substitution
	pos      int     // current scan position within text
	mode     State   // Default, InAtSelector, InPseudoName or InRelationalClause
	blocks   []State // open blocks, InAtBlock or InStyleBlock
	parens   int     // depth of open parentheses
	depth    int     // parenthesis depth of the open relational clause
	group    int     // start of the current selector
	selEnd   int     // position of the ':' ending the outer selector
	clause   int     // position of the ':' starting the relational clause
	found    []alias.Alias
}

func newScanner(css string, reg *alias.Registry) *scanner {
	return &scanner{
		registry: reg,
		text:     css,
	}
}

// State returns the effective state of the scanner.
func (sc *scanner) State() State {
	if sc.mode != Default {
		return sc.mode
	}
	if n := len(sc.blocks); n > 0 {
		return sc.blocks[n-1]
	}
	return Default
}

func (sc *scanner) inStyleBlock() bool {
	n := len(sc.blocks)
	return n > 0 && sc.blocks[n-1] == InStyleBlock
}

func (sc *scanner) run() {
	for sc.pos < len(sc.text) {
		c := sc.text[sc.pos]
		switch c {
		case '/':
			if strings.HasPrefix(sc.text[sc.pos:], "/*") {
				sc.skipComment()
				continue
			}
		case '"', '\'':
			sc.skipString(c)
			continue
		case '(':
			sc.parens++
		case ')':
			if sc.mode == InRelationalClause && sc.parens == sc.depth {
				sc.substitute()
				continue
			}
			if sc.parens > 0 {
				sc.parens--
			}
		case '@':
			if sc.parens == 0 && !sc.inStyleBlock() && sc.mode != InRelationalClause {
				sc.mode = InAtSelector
			}
		case ';':
			if sc.mode != InRelationalClause {
				sc.mode = Default
				sc.group = sc.pos + 1
			}
		case '{':
			sc.openBlock()
		case '}':
			sc.closeBlock()
		case ',':
			if sc.parens == 0 && !sc.inStyleBlock() && sc.mode != InAtSelector {
				sc.group = sc.pos + 1
			}
			if sc.mode == InPseudoName {
				sc.mode = Default
			}
		case ' ', '\t', '\n', '\r', '\f', '>', '+', '~':
			if sc.mode == InPseudoName {
				sc.mode = Default
			}
		case ':':
			if sc.parens == 0 && !sc.inStyleBlock() && sc.mode == Default {
				sc.selEnd = sc.pos
				sc.mode = InPseudoName
			}
		case 'h', 'H':
			if sc.atKeyword() {
				sc.enterClause()
				continue
			}
		}
		sc.pos++
	}
}

// atKeyword checks for 'has(' directly following a single ':' within a run
// of pseudo-classes, e.g. "a:hover:has(". Pseudo-elements ("::") are skipped.
func (sc *scanner) atKeyword() bool {
	if sc.mode != InPseudoName || sc.text[sc.pos-1] != ':' || (sc.pos >= 2 && sc.text[sc.pos-2] == ':') {
		return false
	}
	end := sc.pos + len(keyword)
	if end >= len(sc.text) || sc.text[end] != '(' {
		return false
	}
	return strings.EqualFold(sc.text[sc.pos:end], keyword)
}

// enterClause is called with pos at the keyword. It consumes the keyword and
// the opening parenthesis.
func (sc *scanner) enterClause() {
	sc.mode = InRelationalClause
	sc.clause = sc.pos - 1
	sc.parens++
	sc.depth = sc.parens
	sc.pos += len(keyword) + 1
}

// substitute is called with pos at the parenthesis closing the relational
// clause. It replaces the clause by a marker class and positions the scanner
// at the start of the replacement.
func (sc *scanner) substitute() {
	outer := ""
	if sc.group <= sc.selEnd {
		outer = outerSelector(sc.text[sc.group:sc.selEnd])
	}
	innerStart := sc.clause + 1 + len(keyword) + 1
	inner := strings.TrimSpace(sc.text[innerStart:sc.pos])
	a := sc.registry.Add(outer, inner)
	sc.found = append(sc.found, a)
	tracer().Debugf("outer=%q inner=%q => .%s", outer, inner, a.Marker)
	sc.text = sc.text[:sc.clause] + "." + a.Marker + sc.text[sc.pos+1:]
	sc.pos = sc.clause
	sc.parens--
	sc.depth = 0
	sc.mode = Default
}

// outerSelector trims the selector text preceding a relational clause. If the
// clause is separated from it by a combinator, the clause stands for any
// element in that position, which is made explicit by a universal selector:
//
//     ".list > :has(img)"  =>  outer = ".list > *"
func outerSelector(raw string) string {
	outer := strings.TrimSpace(raw)
	if outer == "" {
		return ""
	}
	if strings.LastIndexAny(outer, ">+~") == len(outer)-1 {
		return outer + " *"
	}
	if strings.TrimRight(raw, " \t\n\r\f") != raw {
		return outer + " *"
	}
	return outer
}

func (sc *scanner) openBlock() {
	if sc.mode == InAtSelector {
		sc.blocks = append(sc.blocks, InAtBlock)
	} else {
		sc.blocks = append(sc.blocks, InStyleBlock)
	}
	sc.reset()
}

func (sc *scanner) closeBlock() {
	if n := len(sc.blocks); n > 0 {
		sc.blocks = sc.blocks[:n-1]
	}
	sc.reset()
}

// reset is called at block boundaries. An unterminated relational clause is
// abandoned there.
func (sc *scanner) reset() {
	sc.mode = Default
	sc.parens = 0
	sc.depth = 0
	sc.group = sc.pos + 1
}

// skipComment moves past a comment. A comment in front of a selector does
// not become part of it.
func (sc *scanner) skipComment() {
	start := sc.pos
	end := strings.Index(sc.text[sc.pos+2:], "*/")
	if end < 0 {
		sc.pos = len(sc.text)
		return
	}
	sc.pos += 2 + end + 2
	if sc.mode == Default && sc.group <= start && strings.TrimSpace(sc.text[sc.group:start]) == "" {
		sc.group = sc.pos
	}
}

func (sc *scanner) skipString(quote byte) {
	i := sc.pos + 1
	for i < len(sc.text) {
		switch sc.text[i] {
		case '\\':
			i += 2
			continue
		case quote:
			sc.pos = i + 1
			return
		case '\n':
			// unterminated string ends at the line break
			sc.pos = i
			return
		}
		i++
	}
	sc.pos = len(sc.text)
}
