package chem

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
)

var (
	colourBlack = color.RGBA{A: 0xff}
	colourGrey  = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

type segment struct {
	a, b  point
	color color.RGBA
	width float64
	bond  int
}

type disc struct {
	c     point
	r     float64
	color color.RGBA
	atom  int
}

type label struct {
	at    point
	text  string
	color color.RGBA
	size  float64
	atom  int
}

// scene is the backend-neutral drawing of a molecule in canvas pixels.
type scene struct {
	width, height int
	background    color.RGBA
	clear         bool

	highlightDiscs []disc
	highlightSegs  []segment
	segs           []segment
	labels         []label
	annotations    []label
	legend         *label
}

func buildScene(m *Mol, opts DrawOptions) *scene {
	sc := &scene{
		width:      opts.Width,
		height:     opts.Height,
		background: opts.background(),
		clear:      opts.ClearBackground,
	}
	coords := m.Coords()
	if len(coords) == 0 {
		return sc
	}

	labels := make([]string, len(m.atoms))
	anyLabel := false
	for i := range m.atoms {
		labels[i] = atomLabel(&m.graph, i)
		anyLabel = anyLabel || labels[i] != ""
	}

	legendH := 0.0
	if opts.Legend != "" {
		legendH = opts.FontSize * 1.6
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range coords {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	margin := 0.0
	if anyLabel {
		margin = 0.4
	}
	bw := math.Max(maxX-minX+2*margin, 1)
	bh := math.Max(maxY-minY+2*margin, 1)

	availW := float64(opts.Width) * (1 - 2*opts.Padding)
	availH := (float64(opts.Height) - legendH) * (1 - 2*opts.Padding)
	s := math.Min(availW/bw, availH/bh)
	s = math.Min(s, math.Min(float64(opts.Width), float64(opts.Height))/2.5)
	if s <= 0 {
		s = 1
	}

	tx := float64(opts.Width)/2 - (minX+maxX)/2*s
	ty := (float64(opts.Height)-legendH)/2 + (minY+maxY)/2*s
	screen := func(p point) point {
		return point{tx + p.X*s, ty - p.Y*s}
	}

	lineW := opts.BondLineWidth * math.Max(1, s/30)
	fontSize := opts.FontSize
	labelR := fontSize * 0.6

	hlColour := opts.highlight()
	for _, ai := range opts.Atoms {
		if ai < 0 || ai >= len(m.atoms) {
			continue
		}
		sc.highlightDiscs = append(sc.highlightDiscs, disc{c: screen(coords[ai]), r: 0.3 * s, color: hlColour, atom: ai})
	}
	for _, bi := range opts.Bonds {
		if bi < 0 || bi >= len(m.bonds) {
			continue
		}
		b := m.bonds[bi]
		sc.highlightSegs = append(sc.highlightSegs, segment{
			a: screen(coords[b.Begin]), b: screen(coords[b.End]),
			color: hlColour, width: math.Max(4*lineW, 0.2*s), bond: bi,
		})
	}

	for bi, b := range m.bonds {
		p1, p2 := screen(coords[b.Begin]), screen(coords[b.End])
		if labels[b.Begin] != "" {
			p1 = shorten(p1, p2, labelR)
		}
		if labels[b.End] != "" {
			p2 = shorten(p2, p1, labelR)
		}
		c1, c2 := atomColour(&m.atoms[b.Begin]), atomColour(&m.atoms[b.End])
		offset := 0.15 * s

		add := func(a, z point) {
			mid := a.add(z).scale(0.5)
			sc.segs = append(sc.segs,
				segment{a: a, b: mid, color: c1, width: lineW, bond: bi},
				segment{a: mid, b: z, color: c2, width: lineW, bond: bi},
			)
		}

		dir := p2.sub(p1)
		n := dir.normal().unit()
		switch b.Kekule {
		case BondDouble:
			side := bondSide(&m.graph, coords, bi)
			if side == 0 {
				shift := n.scale(offset / 2)
				add(p1.add(shift), p2.add(shift))
				add(p1.sub(shift), p2.sub(shift))
				break
			}
			add(p1, p2)
			// screen y is flipped, so the normal flips with it
			inner := n.scale(-float64(side) * offset)
			trim := dir.scale(0.12)
			add(p1.add(inner).add(trim), p2.add(inner).sub(trim))
		case BondTriple, BondQuadruple:
			add(p1, p2)
			shift := n.scale(offset)
			trim := dir.scale(0.08)
			add(p1.add(shift).add(trim), p2.add(shift).sub(trim))
			add(p1.sub(shift).add(trim), p2.sub(shift).sub(trim))
		default:
			add(p1, p2)
		}
	}

	for i := range m.atoms {
		if labels[i] == "" {
			continue
		}
		sc.labels = append(sc.labels, label{
			at: screen(coords[i]), text: labels[i], color: atomColour(&m.atoms[i]), size: fontSize, atom: i,
		})
	}

	if opts.AddStereoAnnotation {
		for i, a := range m.atoms {
			if a.Chiral == ChiralNone {
				continue
			}
			at := screen(coords[i]).add(point{0.3 * s, 0.3 * s})
			sc.annotations = append(sc.annotations, label{
				at: at, text: "(" + a.Chiral.String() + ")", color: colourGrey, size: fontSize * 0.75, atom: i,
			})
		}
	}

	if opts.Legend != "" {
		sc.legend = &label{
			at:    point{float64(opts.Width) / 2, float64(opts.Height) - legendH/2},
			text:  opts.Legend,
			color: colourBlack,
			size:  fontSize,
			atom:  -1,
		}
	}
	return sc
}

// bondSide tells on which side of bond bi the neighbours of its atoms lie:
// +1 or -1 in molecule coordinates, 0 when balanced.
func bondSide(g *graph, coords []point, bi int) int {
	b := g.bonds[bi]
	p1, p2 := coords[b.Begin], coords[b.End]
	n := p2.sub(p1).normal()
	sum := 0
	for _, end := range []int{b.Begin, b.End} {
		for _, nb := range g.adj[end] {
			if nb.bond == bi {
				continue
			}
			d := coords[nb.atom].sub(p1)
			switch v := d.X*n.X + d.Y*n.Y; {
			case v > 1e-6:
				sum++
			case v < -1e-6:
				sum--
			}
		}
	}
	switch {
	case sum > 0:
		return 1
	case sum < 0:
		return -1
	default:
		return 0
	}
}

func shorten(from, to point, by float64) point {
	d := to.sub(from)
	if d.length() <= 2*by {
		return from.add(d.scale(0.3))
	}
	return from.add(d.unit().scale(by))
}

func atomColour(a *Atom) color.RGBA {
	if a.Element == nil {
		return colourGrey
	}
	return a.Element.RGBA()
}

// atomLabel is empty for plain skeletal carbons.
func atomLabel(g *graph, i int) string {
	a := &g.atoms[i]
	sym := a.Symbol()
	if sym == "C" && a.Charge == 0 && a.Isotope == 0 && g.degree(i) > 0 {
		return ""
	}
	out := ""
	if a.Isotope > 0 {
		out += strconv.Itoa(a.Isotope)
	}
	out += sym
	switch h := a.TotalH(); {
	case h == 1:
		out += "H"
	case h > 1:
		out += "H" + strconv.Itoa(h)
	}
	switch {
	case a.Charge == 1:
		out += "+"
	case a.Charge == -1:
		out += "-"
	case a.Charge > 1:
		out += fmt.Sprintf("%d+", a.Charge)
	case a.Charge < -1:
		out += fmt.Sprintf("%d-", -a.Charge)
	}
	return out
}
