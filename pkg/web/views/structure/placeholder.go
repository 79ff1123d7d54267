package structure

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/draw"

	"github.com/scienceol/molbank/pkg/core/structure"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderBg   = color.RGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}
	placeholderText = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	placeholderErr  = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
)

func lines(d *structure.Display) []string {
	out := []string{d.Title, d.Detail}
	if d.Kind == structure.DisplayInvalidStructure && d.Input != "" {
		out = append(out, d.Input)
	}
	return out
}

// placeholderSVG 加载中 / 引擎失败 / 结构无效时的占位图
func placeholderSVG(d *structure.Display) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<?xml version='1.0' encoding='UTF-8'?>\n")
	fmt.Fprintf(&b, "<svg version='1.1' xmlns='http://www.w3.org/2000/svg' width='%dpx' height='%dpx' viewBox='0 0 %d %d' class='placeholder %s'>\n",
		d.Width, d.Height, d.Width, d.Height, d.Kind)
	fmt.Fprintf(&b, "<rect width='%d' height='%d' x='0' y='0' style='fill:#F3F4F6;stroke:none'/>\n", d.Width, d.Height)
	fill := "#6B7280"
	if d.Kind != structure.DisplayLoading {
		fill = "#DC2626"
	}
	ls := lines(d)
	top := float64(d.Height)/2 - float64(len(ls)-1)*9
	for i, l := range ls {
		fmt.Fprintf(&b, "<text x='%.1f' y='%.1f' text-anchor='middle' style='font-size:12px;font-family:sans-serif;fill:%s'>%s</text>\n",
			float64(d.Width)/2, top+float64(i)*18, fill, html.EscapeString(l))
	}
	b.WriteString("</svg>\n")
	return b.String()
}

// paintPlaceholder fills img with the placeholder for d.
func paintPlaceholder(img draw.Image, d *structure.Display) {
	bounds := img.Bounds()
	draw.Draw(img, bounds, image.NewUniform(placeholderBg), image.Point{}, draw.Src)
	col := placeholderErr
	if d.Kind == structure.DisplayLoading {
		col = placeholderText
	}
	ls := lines(d)
	face := basicfont.Face7x13
	top := bounds.Min.Y + bounds.Dy()/2 - (len(ls)-1)*8
	for i, l := range ls {
		drawText(img, face, col, l, bounds.Min.X+bounds.Dx()/2, top+i*16, true)
	}
}

// paintScore writes the score label in the lower left corner.
func paintScore(img draw.Image, label string) {
	if label == "" {
		return
	}
	bounds := img.Bounds()
	drawText(img, basicfont.Face7x13, placeholderText, label, bounds.Min.X+4, bounds.Max.Y-4, false)
}

func drawText(img draw.Image, face font.Face, col color.Color, s string, x, y int, centred bool) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	if centred {
		x -= d.MeasureString(s).Ceil() / 2
	}
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}
