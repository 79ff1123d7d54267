package chem

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const discSides = 32

// Draw paints the molecule onto dst. The canvas size is taken from dst's
// bounds; width and height in opts are ignored.
func (m *Mol) Draw(dst draw.Image, opts map[string]any) error {
	if err := m.alive(); err != nil {
		return err
	}
	b := dst.Bounds()
	raw := make(map[string]any, len(opts)+2)
	for k, v := range opts {
		raw[k] = v
	}
	raw["width"], raw["height"] = b.Dx(), b.Dy()
	o, err := DecodeDrawOptions(raw)
	if err != nil {
		return err
	}
	sc := buildScene(m, o)

	c := &canvas{dst: dst, bounds: b, ras: vector.NewRasterizer(b.Dx(), b.Dy())}
	if sc.clear {
		draw.Draw(dst, b, &image.Uniform{C: sc.background}, image.Point{}, draw.Src)
	}
	for _, s := range sc.highlightSegs {
		c.line(s.a, s.b, s.width, s.color)
		c.disc(s.a, s.width/2, s.color)
		c.disc(s.b, s.width/2, s.color)
	}
	for _, d := range sc.highlightDiscs {
		c.disc(d.c, d.r, d.color)
	}
	for _, s := range sc.segs {
		c.line(s.a, s.b, s.width, s.color)
	}
	for _, l := range sc.labels {
		c.text(l)
	}
	for _, l := range sc.annotations {
		c.text(l)
	}
	if sc.legend != nil {
		c.text(*sc.legend)
	}
	return nil
}

type canvas struct {
	dst    draw.Image
	bounds image.Rectangle
	ras    *vector.Rasterizer
}

func (c *canvas) fill(col color.RGBA) {
	c.ras.Draw(c.dst, c.bounds, &image.Uniform{C: col}, image.Point{})
	c.ras.Reset(c.bounds.Dx(), c.bounds.Dy())
}

func (c *canvas) line(a, z point, width float64, col color.RGBA) {
	d := z.sub(a)
	if d.length() < 1e-6 {
		return
	}
	n := d.normal().unit().scale(math.Max(width, 0.5) / 2)
	p := []point{a.add(n), z.add(n), z.sub(n), a.sub(n)}
	c.ras.MoveTo(float32(p[0].X), float32(p[0].Y))
	for _, q := range p[1:] {
		c.ras.LineTo(float32(q.X), float32(q.Y))
	}
	c.ras.ClosePath()
	c.fill(col)
}

func (c *canvas) disc(center point, r float64, col color.RGBA) {
	if r <= 0 {
		return
	}
	start := center.add(polar(r, 0))
	c.ras.MoveTo(float32(start.X), float32(start.Y))
	for k := 1; k < discSides; k++ {
		q := center.add(polar(r, 2*math.Pi*float64(k)/discSides))
		c.ras.LineTo(float32(q.X), float32(q.Y))
	}
	c.ras.ClosePath()
	c.fill(col)
}

// text uses the fixed 7x13 face; label size only affects layout.
func (c *canvas) text(l label) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  c.dst,
		Src:  image.NewUniform(l.color),
		Face: face,
	}
	w := d.MeasureString(l.text)
	x := fixed.I(c.bounds.Min.X) + fixed.Int26_6(l.at.X*64) - w/2
	y := fixed.I(c.bounds.Min.Y) + fixed.Int26_6(l.at.Y*64) + fixed.I(face.Ascent-face.Height/2)
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(l.text)
}
