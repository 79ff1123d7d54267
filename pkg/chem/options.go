package chem

import (
	"fmt"
	"image/color"

	"github.com/go-viper/mapstructure/v2"
)

const maxCanvasPixels = 16 << 20

// DrawOptions mirrors the JSON option record accepted by the drawing entry
// points. Unknown keys are ignored.
type DrawOptions struct {
	Width               int       `mapstructure:"width"`
	Height              int       `mapstructure:"height"`
	BondLineWidth       float64   `mapstructure:"bondLineWidth"`
	AddStereoAnnotation bool      `mapstructure:"addStereoAnnotation"`
	Atoms               []int     `mapstructure:"atoms"`
	Bonds               []int     `mapstructure:"bonds"`
	HighlightColour     []float64 `mapstructure:"highlightColour"`
	BackgroundColour    []float64 `mapstructure:"backgroundColour"`
	ClearBackground     bool      `mapstructure:"clearBackground"`
	Legend              string    `mapstructure:"legend"`
	Padding             float64   `mapstructure:"padding"`
	FontSize            float64   `mapstructure:"fontSize"`
}

func DefaultDrawOptions() DrawOptions {
	return DrawOptions{
		Width:            250,
		Height:           200,
		BondLineWidth:    1,
		HighlightColour:  []float64{1, 0.5, 0.5},
		BackgroundColour: []float64{1, 1, 1},
		ClearBackground:  true,
		Padding:          0.05,
		FontSize:         12,
	}
}

// DecodeDrawOptions overlays raw on the defaults.
func DecodeDrawOptions(raw map[string]any) (DrawOptions, error) {
	opts := DefaultDrawOptions()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("decode draw options: %w", err)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return opts, fmt.Errorf("canvas %dx%d must be positive", opts.Width, opts.Height)
	}
	if opts.Width*opts.Height > maxCanvasPixels {
		return opts, fmt.Errorf("canvas %dx%d too large", opts.Width, opts.Height)
	}
	if opts.BondLineWidth <= 0 {
		opts.BondLineWidth = 1
	}
	if opts.Padding < 0 || opts.Padding >= 0.5 {
		opts.Padding = 0.05
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	return opts, nil
}

func (o *DrawOptions) highlight() color.RGBA {
	return colourFromFloats(o.HighlightColour, color.RGBA{R: 0xff, G: 0x7f, B: 0x7f, A: 0xff})
}

func (o *DrawOptions) background() color.RGBA {
	return colourFromFloats(o.BackgroundColour, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
}

func colourFromFloats(c []float64, fallback color.RGBA) color.RGBA {
	if len(c) < 3 {
		return fallback
	}
	ch := func(v float64) uint8 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 0xff
		default:
			return uint8(v*255 + 0.5)
		}
	}
	out := color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: 0xff}
	if len(c) >= 4 {
		// color.RGBA is alpha-premultiplied
		a := ch(c[3])
		out = color.RGBA{
			R: uint8(uint16(out.R) * uint16(a) / 0xff),
			G: uint8(uint16(out.G) * uint16(a) / 0xff),
			B: uint8(uint16(out.B) * uint16(a) / 0xff),
			A: a,
		}
	}
	return out
}
