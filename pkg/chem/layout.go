package chem

import "math"

type point struct {
	X, Y float64
}

func (p point) add(q point) point { return point{p.X + q.X, p.Y + q.Y} }

func (p point) sub(q point) point { return point{p.X - q.X, p.Y - q.Y} }

func (p point) scale(f float64) point { return point{p.X * f, p.Y * f} }

func (p point) length() float64 { return math.Hypot(p.X, p.Y) }

func (p point) normal() point { return point{-p.Y, p.X} }

func (p point) unit() point {
	l := p.length()
	if l < 1e-9 {
		return point{1, 0}
	}
	return p.scale(1 / l)
}

func polar(r, theta float64) point { return point{r * math.Cos(theta), r * math.Sin(theta)} }

const (
	relaxIterations = 400
	repelRadius     = 1.8
)

// Coords returns 2D coordinates in bond-length units, computed once per
// molecule.
func (m *Mol) Coords() []point {
	m.coordsOnce.Do(func() {
		m.coords = layout(&m.graph)
	})
	return m.coords
}

type angleTerm struct {
	a, b  int
	ideal float64
}

func layout(g *graph) []point {
	n := len(g.atoms)
	pos := make([]point, n)
	if n == 0 {
		return pos
	}

	comps := components(g)
	offsetX := 0.0
	for _, comp := range comps {
		seed(g, comp, pos)
		relax(g, comp, pos)

		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for _, i := range comp {
			minX, maxX = math.Min(minX, pos[i].X), math.Max(maxX, pos[i].X)
			minY, maxY = math.Min(minY, pos[i].Y), math.Max(maxY, pos[i].Y)
		}
		cy := (minY + maxY) / 2
		for _, i := range comp {
			pos[i] = point{pos[i].X - minX + offsetX, pos[i].Y - cy}
		}
		offsetX += maxX - minX + 1.5
	}
	return pos
}

func components(g *graph) [][]int {
	seen := make([]bool, len(g.atoms))
	var out [][]int
	for s := range g.atoms {
		if seen[s] {
			continue
		}
		seen[s] = true
		comp := []int{s}
		for k := 0; k < len(comp); k++ {
			for _, nb := range g.adj[comp[k]] {
				if !seen[nb.atom] {
					seen[nb.atom] = true
					comp = append(comp, nb.atom)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

// seed places a component along a depth-first zig-zag so that chains start
// out at their textbook 120° geometry.
func seed(g *graph, comp []int, pos []point) {
	placed := make(map[int]bool, len(comp))
	root := comp[0]
	pos[root] = point{}
	placed[root] = true

	var walk func(u int, heading float64, flip bool)
	walk = func(u int, heading float64, flip bool) {
		var children []int
		for _, nb := range g.adj[u] {
			if !placed[nb.atom] {
				children = append(children, nb.atom)
				placed[nb.atom] = true
			}
		}
		var angles []float64
		switch len(children) {
		case 0:
			return
		case 1:
			turn := math.Pi / 3
			if flip {
				turn = -turn
			}
			angles = []float64{heading + turn}
		default:
			spread := 2 * math.Pi / 3
			for k := range children {
				angles = append(angles, heading-spread/2+spread*float64(k)/float64(len(children)-1))
			}
		}
		for k, c := range children {
			pos[c] = pos[u].add(polar(1, angles[k]))
		}
		for k, c := range children {
			walk(c, angles[k], !flip)
		}
	}
	walk(root, 0, false)
}

func relax(g *graph, comp []int, pos []point) {
	if len(comp) < 2 {
		return
	}
	inComp := make(map[int]bool, len(comp))
	for _, i := range comp {
		inComp[i] = true
	}

	terms := angleTerms(g, comp)
	near := make(map[[2]int]bool)
	for _, b := range g.bonds {
		if inComp[b.Begin] {
			near[pairKey(b.Begin, b.End)] = true
		}
	}
	for _, t := range terms {
		near[pairKey(t.a, t.b)] = true
	}

	step := 0.1
	for it := 0; it < relaxIterations; it++ {
		force := make(map[int]point, len(comp))
		for _, b := range g.bonds {
			if !inComp[b.Begin] {
				continue
			}
			spring(pos, force, b.Begin, b.End, 1.0, 1.0)
		}
		for _, t := range terms {
			spring(pos, force, t.a, t.b, t.ideal, 0.5)
		}
		for x := 0; x < len(comp); x++ {
			for y := x + 1; y < len(comp); y++ {
				i, j := comp[x], comp[y]
				if near[pairKey(i, j)] {
					continue
				}
				d := pos[j].sub(pos[i])
				l := d.length()
				if l >= repelRadius {
					continue
				}
				if l < 1e-6 {
					d = polar(1, float64(i*7+j))
					l = 1e-6
				}
				push := d.unit().scale(0.4 * (repelRadius - l))
				force[i] = force[i].sub(push)
				force[j] = force[j].add(push)
			}
		}
		for _, i := range comp {
			pos[i] = pos[i].add(force[i].scale(step))
		}
		if it == relaxIterations/2 {
			step = 0.05
		}
	}
}

func spring(pos []point, force map[int]point, i, j int, ideal, k float64) {
	d := pos[j].sub(pos[i])
	l := d.length()
	if l < 1e-6 {
		d = point{1, 0.3}
		l = d.length()
	}
	f := d.unit().scale(k * (l - ideal))
	force[i] = force[i].add(f)
	force[j] = force[j].sub(f)
}

// angleTerms produces 1-3 distance targets: regular polygon geometry inside
// small rings, linear around triple bonds, 120° elsewhere.
func angleTerms(g *graph, comp []int) []angleTerm {
	var terms []angleTerm
	for _, c := range comp {
		nbs := g.adj[c]
		linear := false
		for _, nb := range nbs {
			if g.bonds[nb.bond].Order == BondTriple {
				linear = true
			}
		}
		for x := 0; x < len(nbs); x++ {
			for y := x + 1; y < len(nbs); y++ {
				a, b := nbs[x].atom, nbs[y].atom
				ideal := math.Sqrt(3)
				switch {
				case linear && len(nbs) == 2:
					ideal = 2
				case len(nbs) >= 4:
					ideal = 1.5
				}
				if size := smallestRing(g, a, b, c); size > 0 {
					interior := math.Pi * float64(size-2) / float64(size)
					ideal = 2 * math.Sin(interior/2)
				}
				terms = append(terms, angleTerm{a: a, b: b, ideal: ideal})
			}
		}
	}
	return terms
}

// smallestRing returns the size of the smallest ring through a-c-b with at
// most eight members, or 0.
func smallestRing(g *graph, a, b, c int) int {
	const maxRing = 8
	dist := map[int]int{a: 0}
	queue := []int{a}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if dist[u] >= maxRing-2 {
			continue
		}
		for _, nb := range g.adj[u] {
			if nb.atom == c {
				continue
			}
			if _, ok := dist[nb.atom]; ok {
				continue
			}
			dist[nb.atom] = dist[u] + 1
			if nb.atom == b {
				return dist[b] + 2
			}
			queue = append(queue, nb.atom)
		}
	}
	return 0
}

func pairKey(i, j int) [2]int {
	if i > j {
		i, j = j, i
	}
	return [2]int{i, j}
}
