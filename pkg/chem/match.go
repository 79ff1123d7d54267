package chem

import (
	"slices"
	"strconv"
	"strings"
)

// MaxMatches caps the number of unique match groups reported.
const MaxMatches = 1000

// Match is one occurrence of a query: target atom indices in query-atom
// order and target bond indices in query-bond order.
type Match struct {
	Atoms []int `json:"atoms"`
	Bonds []int `json:"bonds"`
}

// SubstructMatches returns the unique occurrences of q in m. Two mappings
// that cover the same set of target atoms count once.
func (m *Mol) SubstructMatches(q *QueryMol) ([]Match, error) {
	if err := m.alive(); err != nil {
		return nil, err
	}
	if err := q.alive(); err != nil {
		return nil, err
	}
	s := &matcher{target: &m.graph, query: &q.graph}
	s.run()
	return s.matches, nil
}

type matcher struct {
	target *graph
	query  *graph

	order   []int
	mapping []int
	used    []bool
	seen    map[string]struct{}
	matches []Match
}

func (s *matcher) run() {
	nq := len(s.query.atoms)
	if nq == 0 || nq > len(s.target.atoms) {
		return
	}
	s.order = searchOrder(s.query)
	s.mapping = make([]int, nq)
	for i := range s.mapping {
		s.mapping[i] = -1
	}
	s.used = make([]bool, len(s.target.atoms))
	s.seen = map[string]struct{}{}
	s.extend(0)
}

// searchOrder visits query atoms breadth-first so that every atom after
// the first of its fragment already has a mapped neighbor.
func searchOrder(q *graph) []int {
	order := make([]int, 0, len(q.atoms))
	visited := make([]bool, len(q.atoms))
	for start := range q.atoms {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			order = append(order, u)
			for _, n := range q.adj[u] {
				if !visited[n.atom] {
					visited[n.atom] = true
					queue = append(queue, n.atom)
				}
			}
		}
	}
	return order
}

func (s *matcher) extend(depth int) bool {
	if len(s.matches) >= MaxMatches {
		return false
	}
	if depth == len(s.order) {
		s.record()
		return true
	}
	qa := s.order[depth]

	var candidates []int
	anchor := -1
	for _, n := range s.query.adj[qa] {
		if s.mapping[n.atom] >= 0 {
			anchor = s.mapping[n.atom]
			break
		}
	}
	if anchor >= 0 {
		for _, n := range s.target.adj[anchor] {
			candidates = append(candidates, n.atom)
		}
	} else {
		candidates = make([]int, len(s.target.atoms))
		for i := range candidates {
			candidates[i] = i
		}
	}

	for _, ta := range candidates {
		if s.used[ta] || !atomMatches(&s.query.atoms[qa], &s.target.atoms[ta]) {
			continue
		}
		if !s.bondsConsistent(qa, ta) {
			continue
		}
		s.mapping[qa] = ta
		s.used[ta] = true
		s.extend(depth + 1)
		s.mapping[qa] = -1
		s.used[ta] = false
		if len(s.matches) >= MaxMatches {
			return false
		}
	}
	return false
}

func (s *matcher) bondsConsistent(qa, ta int) bool {
	for _, n := range s.query.adj[qa] {
		mapped := s.mapping[n.atom]
		if mapped < 0 {
			continue
		}
		tb := s.target.bondBetween(ta, mapped)
		if tb < 0 || !bondMatches(&s.query.bonds[n.bond], &s.target.bonds[tb]) {
			return false
		}
	}
	return true
}

func (s *matcher) record() {
	key := make([]int, len(s.mapping))
	copy(key, s.mapping)
	slices.Sort(key)
	var sb strings.Builder
	for _, v := range key {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(',')
	}
	if _, ok := s.seen[sb.String()]; ok {
		return
	}
	s.seen[sb.String()] = struct{}{}

	match := Match{
		Atoms: make([]int, len(s.mapping)),
		Bonds: make([]int, 0, len(s.query.bonds)),
	}
	copy(match.Atoms, s.mapping)
	for _, qb := range s.query.bonds {
		match.Bonds = append(match.Bonds, s.target.bondBetween(s.mapping[qb.Begin], s.mapping[qb.End]))
	}
	s.matches = append(s.matches, match)
}

func atomMatches(q, t *Atom) bool {
	switch q.query {
	case qAtomAny:
	case qAtomAliphatic:
		if t.Aromatic || t.Number() <= 1 {
			return false
		}
	case qAtomAromatic:
		if !t.Aromatic {
			return false
		}
	case qAtomNumber:
		if q.Number() != t.Number() {
			return false
		}
	default:
		if q.Number() != t.Number() || q.Aromatic != t.Aromatic {
			return false
		}
	}
	if q.hasCharge && q.Charge != t.Charge {
		return false
	}
	if q.hasHCount && q.HCount != t.TotalH() {
		return false
	}
	if q.Isotope != 0 && q.Isotope != t.Isotope {
		return false
	}
	return true
}

func bondMatches(q, t *Bond) bool {
	switch {
	case q.anyBond:
		return true
	case q.implicit:
		return t.Order == BondSingle || t.Order == BondAromatic
	default:
		return q.Order == t.Order
	}
}
