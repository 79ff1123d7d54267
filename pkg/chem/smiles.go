package chem

import (
	"fmt"
	"strings"
)

// ParseError reports where a SMILES or SMARTS string stopped making sense.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at %d: %s", e.Input, e.Pos, e.Msg)
}

type bondSpec struct {
	set   bool
	order BondOrder
	any   bool
}

type ringOpen struct {
	atom int
	bond bondSpec
	pos  int
}

type parser struct {
	input string
	pos   int
	table *Table
	query bool

	g       graph
	prev    int
	pending bondSpec
	branch  []int
	rings   map[int]ringOpen
}

var aromaticOrganic = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
}

var aromaticBracket = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S", "se": "Se", "as": "As", "te": "Te",
}

func parse(input string, table *Table, query bool) (*graph, error) {
	p := &parser{
		input: input,
		table: table,
		query: query,
		prev:  -1,
		rings: map[int]ringOpen{},
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return &p.g, nil
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{Input: p.input, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) run() error {
	if strings.TrimSpace(p.input) == "" {
		return p.fail("empty input")
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++
		case c == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.pending.set {
				return p.fail("bond symbol before ')'")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++
		case c == '.':
			if p.pending.set {
				return p.fail("bond symbol before '.'")
			}
			if p.prev < 0 {
				return p.fail("empty fragment before '.'")
			}
			p.prev = -1
			p.pos++
		case isBondSymbol(c, p.query):
			if p.pending.set {
				return p.fail("consecutive bond symbols")
			}
			p.pending = bondSymbol(c)
			p.pos++
		case c >= '0' && c <= '9', c == '%':
			if err := p.ringClosure(); err != nil {
				return err
			}
		case c == '[':
			atom, err := p.bracketAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(atom); err != nil {
				return err
			}
		default:
			atom, err := p.organicAtom()
			if err != nil {
				return err
			}
			if err := p.addAtom(atom); err != nil {
				return err
			}
		}
	}

	switch {
	case len(p.branch) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		first := -1
		for n, open := range p.rings {
			if first < 0 || open.pos < p.rings[first].pos {
				first = n
			}
		}
		return p.fail("unclosed ring %d", first)
	case p.pending.set:
		return p.fail("dangling bond symbol")
	case len(p.g.atoms) == 0:
		return p.fail("no atoms")
	case p.prev < 0:
		return p.fail("empty fragment after '.'")
	}
	for len(p.g.adj) < len(p.g.atoms) {
		p.g.adj = append(p.g.adj, nil)
	}
	return nil
}

func isBondSymbol(c byte, query bool) bool {
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	case '~':
		return query
	}
	return false
}

func bondSymbol(c byte) bondSpec {
	switch c {
	case '=':
		return bondSpec{set: true, order: BondDouble}
	case '#':
		return bondSpec{set: true, order: BondTriple}
	case '$':
		return bondSpec{set: true, order: BondQuadruple}
	case ':':
		return bondSpec{set: true, order: BondAromatic}
	case '~':
		return bondSpec{set: true, any: true}
	default:
		return bondSpec{set: true, order: BondSingle}
	}
}

func (p *parser) addAtom(a Atom) error {
	idx := len(p.g.atoms)
	p.g.atoms = append(p.g.atoms, a)
	if p.prev >= 0 {
		if err := p.connect(p.prev, idx, p.pending); err != nil {
			return err
		}
	} else if p.pending.set {
		return p.fail("bond symbol without a preceding atom")
	}
	p.pending = bondSpec{}
	p.prev = idx
	return nil
}

func (p *parser) connect(a, b int, spec bondSpec) error {
	if a == b {
		return p.fail("atom bonded to itself")
	}
	if p.g.bondBetween(a, b) >= 0 {
		return p.fail("duplicate bond between atoms %d and %d", a, b)
	}
	bond := Bond{Begin: a, End: b, Order: spec.order, anyBond: spec.any, implicit: !spec.set}
	if !spec.set {
		bond.Order = BondSingle
		if p.g.atoms[a].Aromatic && p.g.atoms[b].Aromatic {
			bond.Order = BondAromatic
		}
	}
	bond.Kekule = bond.Order
	p.g.addBond(bond)
	return nil
}

func (p *parser) ringClosure() error {
	start := p.pos
	var n int
	if p.input[p.pos] == '%' {
		if p.pos+2 >= len(p.input) || !isDigit(p.input[p.pos+1]) || !isDigit(p.input[p.pos+2]) {
			return p.fail("bad ring number")
		}
		n = int(p.input[p.pos+1]-'0')*10 + int(p.input[p.pos+2]-'0')
		p.pos += 3
	} else {
		n = int(p.input[p.pos] - '0')
		p.pos++
	}
	if p.prev < 0 {
		p.pos = start
		return p.fail("ring bond without a preceding atom")
	}

	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, bond: p.pending, pos: start}
		p.pending = bondSpec{}
		return nil
	}
	delete(p.rings, n)

	spec := open.bond
	if p.pending.set {
		if spec.set && spec != p.pending {
			return p.fail("conflicting ring bond %d", n)
		}
		spec = p.pending
	}
	p.pending = bondSpec{}
	return p.connect(open.atom, p.prev, spec)
}

func (p *parser) organicAtom() (Atom, error) {
	rest := p.input[p.pos:]
	if p.query {
		switch rest[0] {
		case '*':
			p.pos++
			return Atom{query: qAtomAny}, nil
		case 'A':
			p.pos++
			return Atom{query: qAtomAliphatic}, nil
		case 'a':
			p.pos++
			return Atom{query: qAtomAromatic, Aromatic: true}, nil
		}
	} else if rest[0] == '*' {
		p.pos++
		e, _ := p.table.BySymbol("*")
		return Atom{Element: e}, nil
	}

	for _, sym := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, sym) {
			p.pos += 2
			return p.element(sym, false)
		}
	}
	switch rest[0] {
	case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		return p.element(rest[:1], false)
	}
	if sym, ok := aromaticOrganic[rest[:1]]; ok {
		p.pos++
		return p.element(sym, true)
	}
	return Atom{}, p.fail("unexpected character %q", rest[0])
}

func (p *parser) element(symbol string, aromatic bool) (Atom, error) {
	e, ok := p.table.BySymbol(symbol)
	if !ok {
		return Atom{}, p.fail("unknown element %s", symbol)
	}
	return Atom{Element: e, Aromatic: aromatic}, nil
}

func (p *parser) bracketAtom() (Atom, error) {
	p.pos++ // [
	atom := Atom{Bracket: true}

	atom.Isotope = p.readInt()

	if err := p.bracketSymbol(&atom); err != nil {
		return Atom{}, err
	}

	if p.peek() == '@' {
		p.pos++
		atom.Chiral = ChiralCCW
		if p.peek() == '@' {
			p.pos++
			atom.Chiral = ChiralCW
		}
	}

	if p.peek() == 'H' {
		p.pos++
		atom.HCount = 1
		atom.hasHCount = true
		if isDigit(p.peek()) {
			atom.HCount = p.readInt()
		}
	}

	switch p.peek() {
	case '+', '-':
		sign := 1
		if p.peek() == '-' {
			sign = -1
		}
		sym := p.peek()
		p.pos++
		mag := 1
		if isDigit(p.peek()) {
			mag = p.readInt()
		} else {
			for p.peek() == sym {
				mag++
				p.pos++
			}
		}
		atom.Charge = sign * mag
		atom.hasCharge = true
	}

	if p.peek() == ':' {
		p.pos++
		if !isDigit(p.peek()) {
			return Atom{}, p.fail("bad atom class")
		}
		atom.Class = p.readInt()
	}

	if p.peek() != ']' {
		return Atom{}, p.fail("unterminated bracket atom")
	}
	p.pos++
	return atom, nil
}

func (p *parser) bracketSymbol(atom *Atom) error {
	rest := p.input[p.pos:]
	if rest == "" {
		return p.fail("unterminated bracket atom")
	}
	if rest[0] == '*' {
		p.pos++
		if p.query {
			atom.query = qAtomAny
			return nil
		}
		atom.Element, _ = p.table.BySymbol("*")
		return nil
	}
	if p.query && rest[0] == '#' {
		p.pos++
		if !isDigit(p.peek()) {
			return p.fail("bad atomic number")
		}
		n := p.readInt()
		e, ok := p.table.ByNumber(n)
		if !ok {
			return p.fail("unknown atomic number %d", n)
		}
		atom.Element = e
		// [#n] constrains the element but not aromaticity.
		atom.query = qAtomNumber
		return nil
	}
	for _, n := range []int{2, 1} {
		if len(rest) < n {
			continue
		}
		if sym, ok := aromaticBracket[rest[:n]]; ok {
			e, ok := p.table.BySymbol(sym)
			if !ok {
				return p.fail("unknown element %s", sym)
			}
			p.pos += n
			atom.Element = e
			atom.Aromatic = true
			return nil
		}
	}
	if rest[0] < 'A' || rest[0] > 'Z' {
		return p.fail("bad atom symbol")
	}
	if len(rest) >= 2 && rest[1] >= 'a' && rest[1] <= 'z' {
		if e, ok := p.table.BySymbol(rest[:2]); ok {
			p.pos += 2
			atom.Element = e
			return nil
		}
	}
	e, ok := p.table.BySymbol(rest[:1])
	if !ok {
		return p.fail("unknown element %s", rest[:1])
	}
	p.pos++
	atom.Element = e
	return nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) readInt() int {
	n := 0
	for isDigit(p.peek()) {
		n = n*10 + int(p.input[p.pos]-'0')
		p.pos++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
