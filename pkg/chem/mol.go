package chem

import (
	"errors"
	"sync"
)

var ErrDeleted = errors.New("chem: handle already deleted")

type Chirality int

const (
	ChiralNone Chirality = iota
	ChiralCCW            // @
	ChiralCW             // @@
)

func (c Chirality) String() string {
	switch c {
	case ChiralCCW:
		return "@"
	case ChiralCW:
		return "@@"
	default:
		return ""
	}
}

type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

func (o BondOrder) valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

type queryAtomKind int

const (
	qAtomElement queryAtomKind = iota
	qAtomAny
	qAtomAliphatic
	qAtomAromatic
	qAtomNumber
)

type Atom struct {
	Element  *Element
	Aromatic bool
	Charge   int
	Isotope  int
	Chiral   Chirality
	Class    int
	// Bracket atoms carry an explicit hydrogen count in HCount; organic
	// subset atoms get ImplicitH from valence rules.
	Bracket   bool
	HCount    int
	ImplicitH int

	query     queryAtomKind
	hasCharge bool
	hasHCount bool
}

func (a *Atom) Symbol() string {
	if a.Element == nil {
		return "*"
	}
	return a.Element.Symbol
}

func (a *Atom) Number() int {
	if a.Element == nil {
		return 0
	}
	return a.Element.Number
}

// TotalH is the number of hydrogens attached to the atom.
func (a *Atom) TotalH() int {
	if a.Bracket {
		return a.HCount
	}
	return a.ImplicitH
}

type Bond struct {
	Begin int
	End   int
	Order BondOrder
	// Kekule is the localized order used for valence and drawing; it
	// equals Order for non-aromatic bonds.
	Kekule BondOrder

	implicit bool
	anyBond  bool
}

func (b *Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

type neighbor struct {
	atom int
	bond int
}

// graph is shared by molecules and queries.
type graph struct {
	atoms []Atom
	bonds []Bond
	adj   [][]neighbor
}

func (g *graph) addBond(b Bond) int {
	idx := len(g.bonds)
	g.bonds = append(g.bonds, b)
	for len(g.adj) < len(g.atoms) {
		g.adj = append(g.adj, nil)
	}
	g.adj[b.Begin] = append(g.adj[b.Begin], neighbor{atom: b.End, bond: idx})
	g.adj[b.End] = append(g.adj[b.End], neighbor{atom: b.Begin, bond: idx})
	return idx
}

func (g *graph) bondBetween(a, b int) int {
	if a >= len(g.adj) {
		return -1
	}
	for _, n := range g.adj[a] {
		if n.atom == b {
			return n.bond
		}
	}
	return -1
}

func (g *graph) degree(a int) int {
	if a >= len(g.adj) {
		return 0
	}
	return len(g.adj[a])
}

// handle tracks the engine-side lifetime of a parsed object. Every handle
// obtained from an Engine must be released with Delete.
type handle struct {
	engine *Engine
	once   sync.Once
	mu     sync.RWMutex
	dead   bool
}

func (h *handle) Delete() {
	h.once.Do(func() {
		h.mu.Lock()
		h.dead = true
		h.mu.Unlock()
		h.engine.release()
	})
}

func (h *handle) alive() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.dead {
		return ErrDeleted
	}
	return nil
}

// Mol is a parsed molecule.
type Mol struct {
	handle
	graph
	input string

	coordsOnce sync.Once
	coords     []point
}

func (m *Mol) Input() string {
	return m.input
}

func (m *Mol) NumAtoms() int {
	return len(m.atoms)
}

func (m *Mol) NumBonds() int {
	return len(m.bonds)
}

func (m *Mol) Atom(i int) Atom {
	return m.atoms[i]
}

func (m *Mol) Bond(i int) Bond {
	return m.bonds[i]
}

// QueryMol is a parsed substructure query.
type QueryMol struct {
	handle
	graph
	input string
}

func (q *QueryMol) Input() string {
	return q.input
}

func (q *QueryMol) NumAtoms() int {
	return len(q.atoms)
}
