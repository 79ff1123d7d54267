package chem

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

func (m *Mol) elementCounts() map[string]int {
	counts := make(map[string]int)
	for i := range m.atoms {
		a := &m.atoms[i]
		if a.Element != nil && a.Element.Number > 0 {
			counts[a.Element.Symbol]++
		}
		if h := a.TotalH(); h > 0 {
			counts["H"] += h
		}
	}
	return counts
}

// Formula returns the molecular formula in Hill order: C first, then H,
// then everything else alphabetically. Without carbon all symbols are
// alphabetical.
func (m *Mol) Formula() (string, error) {
	if err := m.alive(); err != nil {
		return "", err
	}
	counts := m.elementCounts()
	syms := make([]string, 0, len(counts))
	for s := range counts {
		syms = append(syms, s)
	}
	slices.Sort(syms)
	if counts["C"] > 0 {
		rest := syms[:0:0]
		for _, s := range syms {
			if s != "C" && s != "H" {
				rest = append(rest, s)
			}
		}
		head := []string{"C"}
		if counts["H"] > 0 {
			head = append(head, "H")
		}
		syms = append(head, rest...)
	}

	var sb strings.Builder
	for _, s := range syms {
		sb.WriteString(s)
		if n := counts[s]; n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	charge := 0
	for i := range m.atoms {
		charge += m.atoms[i].Charge
	}
	switch {
	case charge == 1:
		sb.WriteString("+")
	case charge == -1:
		sb.WriteString("-")
	case charge > 1:
		sb.WriteString(strconv.Itoa(charge) + "+")
	case charge < -1:
		sb.WriteString(strconv.Itoa(-charge) + "-")
	}
	return sb.String(), nil
}

// Weight returns the average molecular weight in g/mol, rounded to two
// decimals.
func (m *Mol) Weight() (float64, error) {
	if err := m.alive(); err != nil {
		return 0, err
	}
	hMass := 1.008
	if h, ok := m.engine.table.BySymbol("H"); ok {
		hMass = h.Mass
	}
	total := 0.0
	for i := range m.atoms {
		a := &m.atoms[i]
		if a.Element != nil {
			total += a.Element.Mass
		}
		total += float64(a.TotalH()) * hMass
	}
	return math.Round(total*100) / 100, nil
}
