package chem

import (
	"bytes"
	"fmt"
	"html"
	"image/color"
)

// SVG renders the molecule as standalone SVG markup. opts is the raw option
// record; see DrawOptions.
func (m *Mol) SVG(opts map[string]any) (string, error) {
	if err := m.alive(); err != nil {
		return "", err
	}
	o, err := DecodeDrawOptions(opts)
	if err != nil {
		return "", err
	}
	sc := buildScene(m, o)

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `<?xml version='1.0' encoding='UTF-8'?>
<svg version='1.1' baseProfile='full' xmlns='http://www.w3.org/2000/svg' xml:space='preserve' width='%dpx' height='%dpx' viewBox='0 0 %d %d'>
<!-- END OF HEADER -->
`, sc.width, sc.height, sc.width, sc.height)

	if sc.clear {
		fmt.Fprintf(buf, "<rect style='opacity:1.0;fill:%s;stroke:none' width='%d' height='%d' x='0' y='0'> </rect>\n",
			hexColour(sc.background), sc.width, sc.height)
	}
	for _, s := range sc.highlightSegs {
		fmt.Fprintf(buf, "<path class='bond-%d' d='M %.1f,%.1f L %.1f,%.1f' style='fill:none;stroke:%s;stroke-width:%.1fpx;stroke-linecap:round;stroke-opacity:%s' />\n",
			s.bond, s.a.X, s.a.Y, s.b.X, s.b.Y, hexColour(s.color), s.width, opacity(s.color))
	}
	for _, d := range sc.highlightDiscs {
		fmt.Fprintf(buf, "<ellipse class='atom-%d' cx='%.1f' cy='%.1f' rx='%.1f' ry='%.1f' style='fill:%s;fill-opacity:%s;stroke:none' />\n",
			d.atom, d.c.X, d.c.Y, d.r, d.r, hexColour(d.color), opacity(d.color))
	}
	for _, s := range sc.segs {
		fmt.Fprintf(buf, "<path class='bond-%d' d='M %.1f,%.1f L %.1f,%.1f' style='fill:none;stroke:%s;stroke-width:%.1fpx;stroke-linecap:butt;stroke-opacity:1' />\n",
			s.bond, s.a.X, s.a.Y, s.b.X, s.b.Y, hexColour(s.color), s.width)
	}
	for _, l := range sc.labels {
		writeText(buf, fmt.Sprintf("atom-%d", l.atom), l)
	}
	for _, l := range sc.annotations {
		writeText(buf, fmt.Sprintf("note atom-%d", l.atom), l)
	}
	if sc.legend != nil {
		writeText(buf, "legend", *sc.legend)
	}
	buf.WriteString("</svg>\n")
	return buf.String(), nil
}

func writeText(buf *bytes.Buffer, class string, l label) {
	fmt.Fprintf(buf, "<text class='%s' x='%.1f' y='%.1f' style='font-size:%.0fpx;font-family:sans-serif;text-anchor:middle;fill:%s' dominant-baseline='central'>%s</text>\n",
		class, l.at.X, l.at.Y, l.size, hexColour(l.color), html.EscapeString(l.text))
}

func hexColour(c color.RGBA) string {
	if c.A == 0 {
		return "#000000"
	}
	// un-premultiply
	r := uint16(c.R) * 0xff / uint16(c.A)
	g := uint16(c.G) * 0xff / uint16(c.A)
	b := uint16(c.B) * 0xff / uint16(c.A)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func opacity(c color.RGBA) string {
	return fmt.Sprintf("%.2f", float64(c.A)/0xff)
}
