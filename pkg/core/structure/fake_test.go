package structure

import (
	"errors"
	"image/draw"
	"sync"

	"github.com/scienceol/molbank/pkg/chem"
)

var errFakeParse = errors.New("fake: cannot parse")

type fakeEngine struct {
	mu      sync.Mutex
	live    int
	draws   []map[string]any
	svgs    []map[string]any
	matches map[string][]chem.Match
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{matches: map[string][]chem.Match{}}
}

func (e *fakeEngine) GetMol(smiles string) (Molecule, error) {
	if smiles == "" || smiles == "invalid" {
		return nil, errFakeParse
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live++
	return &fakeMol{e: e, smiles: smiles}, nil
}

func (e *fakeEngine) GetQMol(smarts string) (Query, error) {
	if smarts == "invalid" {
		return nil, errFakeParse
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live++
	return &fakeQuery{e: e, smarts: smarts}, nil
}

func (e *fakeEngine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

func (e *fakeEngine) Draws() []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]map[string]any(nil), e.draws...)
}

func (e *fakeEngine) SVGs() []map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]map[string]any(nil), e.svgs...)
}

type fakeMol struct {
	e      *fakeEngine
	smiles string
	once   sync.Once
}

func (m *fakeMol) SubstructMatches(q Query) ([]chem.Match, error) {
	return m.e.matches[q.(*fakeQuery).smarts], nil
}

func (m *fakeMol) SVG(opts map[string]any) (string, error) {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.e.svgs = append(m.e.svgs, opts)
	return "<svg>" + m.smiles + "</svg>", nil
}

func (m *fakeMol) Draw(_ draw.Image, opts map[string]any) error {
	m.e.mu.Lock()
	defer m.e.mu.Unlock()
	m.e.draws = append(m.e.draws, opts)
	return nil
}

func (m *fakeMol) Delete() {
	m.once.Do(func() {
		m.e.mu.Lock()
		m.e.live--
		m.e.mu.Unlock()
	})
}

type fakeQuery struct {
	e      *fakeEngine
	smarts string
	once   sync.Once
}

func (q *fakeQuery) Delete() {
	q.once.Do(func() {
		q.e.mu.Lock()
		q.e.live--
		q.e.mu.Unlock()
	})
}
