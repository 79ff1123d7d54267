package chem

import "fmt"

// perceive validates a freshly parsed molecule graph: aromatic atoms must
// sit in rings and admit a Kekulé structure, and every atom must respect
// its valence rules. Implicit hydrogens are assigned on the way, then rings
// written in Kekulé form are marked aromatic.
func perceive(input string, g *graph) error {
	ringBond := ringBonds(g)

	for i := range g.atoms {
		if !g.atoms[i].Aromatic {
			continue
		}
		inRing := false
		for _, n := range g.adj[i] {
			if ringBond[n.bond] {
				inRing = true
				break
			}
		}
		if !inRing {
			return &ParseError{Input: input, Pos: -1, Msg: fmt.Sprintf("non-ring atom %d marked aromatic", i)}
		}
	}
	for i, b := range g.bonds {
		if b.Order == BondAromatic && !ringBond[i] {
			return &ParseError{Input: input, Pos: -1, Msg: fmt.Sprintf("non-ring bond %d marked aromatic", i)}
		}
	}

	if err := kekulize(g); err != nil {
		return &ParseError{Input: input, Pos: -1, Msg: err.Error()}
	}

	for i := range g.atoms {
		if err := assignHydrogens(g, i); err != nil {
			return &ParseError{Input: input, Pos: -1, Msg: err.Error()}
		}
	}
	aromatize(g, ringBond)
	return nil
}

const maxAromaticRing = 8

// aromatize marks every simple ring of up to maxAromaticRing atoms whose
// pi electron count satisfies 4n+2. Kekule keeps the localized orders.
func aromatize(g *graph, ringBond []bool) {
	for _, cycle := range rings(g, ringBond) {
		if !aromaticRing(g, ringBond, cycle) {
			continue
		}
		for k, a := range cycle {
			g.atoms[a].Aromatic = true
			b := g.bondBetween(a, cycle[(k+1)%len(cycle)])
			g.bonds[b].Order = BondAromatic
		}
	}
}

// rings lists the simple cycles made of ring bonds, each starting at its
// lowest atom index.
func rings(g *graph, ringBond []bool) [][]int {
	var out [][]int
	seen := map[string]bool{}
	path := make([]int, 0, maxAromaticRing)
	onPath := make([]bool, len(g.atoms))

	var walk func(start, u int)
	walk = func(start, u int) {
		for _, nb := range g.adj[u] {
			if !ringBond[nb.bond] {
				continue
			}
			if nb.atom == start && len(path) >= 3 {
				key := cycleKey(path)
				if !seen[key] {
					seen[key] = true
					out = append(out, append([]int(nil), path...))
				}
				continue
			}
			if nb.atom <= start || onPath[nb.atom] || len(path) == maxAromaticRing {
				continue
			}
			path = append(path, nb.atom)
			onPath[nb.atom] = true
			walk(start, nb.atom)
			onPath[nb.atom] = false
			path = path[:len(path)-1]
		}
	}
	for s := range g.atoms {
		path = append(path[:0], s)
		onPath[s] = true
		walk(s, s)
		onPath[s] = false
	}
	return out
}

// cycleKey is direction independent: the walk finds every ring twice.
func cycleKey(path []int) string {
	fwd := fmt.Sprint(path[1:])
	rev := make([]int, 0, len(path)-1)
	for i := len(path) - 1; i >= 1; i-- {
		rev = append(rev, path[i])
	}
	if r := fmt.Sprint(rev); r < fwd {
		fwd = r
	}
	return fmt.Sprint(path[0], fwd)
}

func aromaticRing(g *graph, ringBond []bool, cycle []int) bool {
	electrons := 0
	for _, a := range cycle {
		e, ok := piElectrons(g, ringBond, a)
		if !ok {
			return false
		}
		electrons += e
	}
	return electrons >= 2 && (electrons-2)%4 == 0
}

var aromaticElements = map[string]bool{
	"B": true, "C": true, "N": true, "O": true, "P": true, "S": true, "Se": true, "As": true, "Te": true,
}

// piElectrons is the contribution of a ring atom to the ring's pi system.
// An atom with an endocyclic double bond gives one, a lone pair donor two
// and a carbon with an exocyclic double bond none.
func piElectrons(g *graph, ringBond []bool, i int) (int, bool) {
	a := &g.atoms[i]
	if a.Element == nil || !aromaticElements[a.Element.Symbol] {
		return 0, false
	}
	ringDouble, exoDouble := 0, 0
	for _, n := range g.adj[i] {
		switch g.bonds[n.bond].Kekule {
		case BondDouble:
			if ringBond[n.bond] {
				ringDouble++
			} else {
				exoDouble++
			}
		case BondTriple, BondQuadruple:
			return 0, false
		}
	}
	switch {
	case ringDouble == 1 && exoDouble == 0:
		return 1, true
	case ringDouble > 0:
		return 0, false
	case exoDouble == 1 && (a.Element.Symbol == "C" || a.Element.Symbol == "B"):
		return 0, true
	case exoDouble > 0:
		return 0, false
	}

	degree := len(g.adj[i]) + a.TotalH()
	switch a.Element.Symbol {
	case "C":
		switch a.Charge {
		case -1:
			return 2, degree == 3
		case 1:
			return 0, degree == 3
		}
	case "B":
		return 0, a.Charge == 0 && degree == 3
	case "N", "P", "As":
		return 2, a.Charge == 0 && degree == 3
	case "O", "S", "Se", "Te":
		return 2, a.Charge == 0 && degree == 2
	}
	return 0, false
}

// ringBonds marks every bond that is not a bridge.
func ringBonds(g *graph) []bool {
	n := len(g.atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	isRing := make([]bool, len(g.bonds))
	for i := range isRing {
		isRing[i] = true
	}

	timer := 0
	var visit func(u, parentBond int)
	visit = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, nb := range g.adj[u] {
			if nb.bond == parentBond {
				continue
			}
			if disc[nb.atom] < 0 {
				visit(nb.atom, nb.bond)
				low[u] = min(low[u], low[nb.atom])
				if low[nb.atom] > disc[u] {
					isRing[nb.bond] = false
				}
			} else {
				low[u] = min(low[u], disc[nb.atom])
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] < 0 {
			visit(i, -1)
		}
	}
	return isRing
}

// needsPi reports whether an aromatic atom must take part in exactly one
// localized double bond.
func needsPi(g *graph, i int) bool {
	a := &g.atoms[i]
	if !a.Aromatic || a.Element == nil {
		return false
	}
	explicit := 0
	for _, n := range g.adj[i] {
		b := g.bonds[n.bond]
		if b.Order == BondAromatic {
			explicit++
			continue
		}
		if b.Order.valence() > 1 {
			// exocyclic double bond, e.g. the carbonyl of a pyridone
			return false
		}
		explicit++
	}

	target := defaultValence(a)
	if target < 0 {
		return false
	}
	if a.Bracket {
		return target-explicit-a.HCount >= 1
	}
	switch a.Element.Symbol {
	case "C", "B":
		return true
	case "N", "P":
		return len(g.adj[i]) < 3
	default:
		return false
	}
}

// defaultValence is the smallest valence of the element adjusted for the
// formal charge the way isoelectronic species behave (N+ like C, O- like F).
func defaultValence(a *Atom) int {
	if a.Element == nil || len(a.Element.Valences) == 0 {
		return -1
	}
	v := a.Element.Valences[0]
	switch {
	case a.Charge == 0:
		return v
	case a.Element.Symbol == "C" || a.Element.Symbol == "B":
		return v - abs(a.Charge)
	default:
		return v + a.Charge
	}
}

func kekulize(g *graph) error {
	var candidates []int
	need := make([]bool, len(g.atoms))
	for i := range g.atoms {
		if needsPi(g, i) {
			need[i] = true
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range g.bonds {
			if g.bonds[i].Order == BondAromatic {
				g.bonds[i].Kekule = BondSingle
			}
		}
		return nil
	}

	mate := make([]int, len(g.atoms))
	for i := range mate {
		mate[i] = -1
	}

	var match func(k int) bool
	match = func(k int) bool {
		for k < len(candidates) && mate[candidates[k]] >= 0 {
			k++
		}
		if k == len(candidates) {
			return true
		}
		u := candidates[k]
		for _, n := range g.adj[u] {
			if g.bonds[n.bond].Order != BondAromatic || !need[n.atom] || mate[n.atom] >= 0 {
				continue
			}
			mate[u], mate[n.atom] = n.atom, u
			if match(k + 1) {
				return true
			}
			mate[u], mate[n.atom] = -1, -1
		}
		return false
	}
	if !match(0) {
		return fmt.Errorf("can't kekulize aromatic system")
	}

	for i := range g.bonds {
		b := &g.bonds[i]
		if b.Order != BondAromatic {
			continue
		}
		if mate[b.Begin] == b.End {
			b.Kekule = BondDouble
		} else {
			b.Kekule = BondSingle
		}
	}
	return nil
}

func assignHydrogens(g *graph, i int) error {
	a := &g.atoms[i]
	if a.Element == nil || a.Element.Number == 0 {
		return nil
	}
	used := 0
	for _, n := range g.adj[i] {
		used += g.bonds[n.bond].Kekule.valence()
	}

	if a.Bracket {
		maxV := a.Element.MaxValence()
		if maxV < 0 {
			return nil
		}
		if used+a.HCount > maxV+abs(a.Charge) {
			return fmt.Errorf("explicit valence for atom %d %s is greater than permitted", i, a.Element.Symbol)
		}
		return nil
	}

	for _, v := range a.Element.Valences {
		if v >= used {
			a.ImplicitH = v - used
			return nil
		}
	}
	return fmt.Errorf("explicit valence for atom %d %s, %d, is greater than permitted", i, a.Element.Symbol, used)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
