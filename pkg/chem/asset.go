package chem

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed molkit.yaml
var defaultAsset []byte

// Element is one row of the element table asset.
type Element struct {
	Symbol   string  `yaml:"symbol"`
	Number   int     `yaml:"number"`
	Mass     float64 `yaml:"mass"`
	Valences []int   `yaml:"valences"`
	Color    string  `yaml:"color"`

	rgba color.RGBA
}

func (e *Element) RGBA() color.RGBA {
	return e.rgba
}

// MaxValence returns the largest allowed valence, or -1 when the element
// has no valence rule.
func (e *Element) MaxValence() int {
	best := -1
	for _, v := range e.Valences {
		if v > best {
			best = v
		}
	}
	return best
}

// Table indexes elements by symbol and atomic number.
type Table struct {
	Version  int        `yaml:"version"`
	Elements []*Element `yaml:"elements"`

	bySymbol map[string]*Element
	byNumber map[int]*Element
}

var requiredSymbols = []string{"H", "C", "N", "O"}

// ParseTable decodes and validates an element table.
func ParseTable(data []byte) (*Table, error) {
	t := &Table{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode element table: %w", err)
	}
	if len(t.Elements) == 0 {
		return nil, errors.New("element table is empty")
	}

	t.bySymbol = make(map[string]*Element, len(t.Elements))
	t.byNumber = make(map[int]*Element, len(t.Elements))
	for _, e := range t.Elements {
		if e.Symbol == "" {
			return nil, fmt.Errorf("element %d has no symbol", e.Number)
		}
		if _, ok := t.bySymbol[e.Symbol]; ok {
			return nil, fmt.Errorf("duplicate element %s", e.Symbol)
		}
		c, err := parseHexColor(e.Color)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", e.Symbol, err)
		}
		e.rgba = c
		t.bySymbol[e.Symbol] = e
		t.byNumber[e.Number] = e
	}
	for _, s := range requiredSymbols {
		if _, ok := t.bySymbol[s]; !ok {
			return nil, fmt.Errorf("element table misses %s", s)
		}
	}
	return t, nil
}

// DefaultTable returns the table compiled into the binary.
func DefaultTable() *Table {
	t, err := ParseTable(defaultAsset)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultAsset returns the raw bytes of the compiled-in asset.
func DefaultAsset() []byte {
	out := make([]byte, len(defaultAsset))
	copy(out, defaultAsset)
	return out
}

// WriteAsset provisions the compiled-in asset at path, creating parent
// directories as needed.
func WriteAsset(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, defaultAsset, 0o644)
}

func (t *Table) BySymbol(symbol string) (*Element, bool) {
	e, ok := t.bySymbol[symbol]
	return e, ok
}

func (t *Table) ByNumber(n int) (*Element, bool) {
	e, ok := t.byNumber[n]
	return e, ok
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
