package chem

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVG(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("CC(=O)Oc1ccccc1C(=O)O")
	require.NoError(t, err)
	defer m.Delete()

	svg, err := m.SVG(map[string]any{"width": 300, "height": 240})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, "width='300px' height='240px'")
	assert.Contains(t, svg, "class='bond-12'")
	assert.Contains(t, svg, ">OH</text>")
	assert.NotContains(t, svg, "<ellipse")
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
}

func TestSVG_Highlights(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("OCCO")
	require.NoError(t, err)
	defer m.Delete()

	svg, err := m.SVG(map[string]any{
		"atoms":           []int{0, 1, 99},
		"bonds":           []any{0.0},
		"highlightColour": []float64{0, 0, 1},
	})
	require.NoError(t, err)
	assert.Contains(t, svg, "<ellipse class='atom-0'")
	assert.Contains(t, svg, "<ellipse class='atom-1'")
	assert.NotContains(t, svg, "atom-99")
	assert.Contains(t, svg, "stroke:#0000FF")
}

func TestSVG_StereoAndLegend(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("N[C@@H](C)C(=O)O")
	require.NoError(t, err)
	defer m.Delete()

	plain, err := m.SVG(nil)
	require.NoError(t, err)
	assert.NotContains(t, plain, "(@@)")

	annotated, err := m.SVG(map[string]any{"addStereoAnnotation": true, "legend": "<alanine>"})
	require.NoError(t, err)
	assert.Contains(t, annotated, "(@@)")
	assert.Contains(t, annotated, "&lt;alanine&gt;")
}

func TestSVG_BadOptions(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("C")
	require.NoError(t, err)
	defer m.Delete()

	for _, opts := range []map[string]any{
		{"width": 0},
		{"height": -5},
		{"width": 10000, "height": 10000},
		{"width": "wide"},
	} {
		_, err := m.SVG(opts)
		assert.Error(t, err, "%v", opts)
	}
}

func TestDraw(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("c1ccccc1O")
	require.NoError(t, err)
	defer m.Delete()

	img := image.NewRGBA(image.Rect(0, 0, 120, 100))
	require.NoError(t, m.Draw(img, map[string]any{"atoms": []int{6}}))

	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 0))
	inked := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 120; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 100)
}

func TestDraw_NoClear(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("CC")
	require.NoError(t, err)
	defer m.Delete()

	img := image.NewRGBA(image.Rect(10, 10, 70, 60))
	require.NoError(t, m.Draw(img, map[string]any{"clearBackground": false}))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 10))
}

func TestAssetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static", "molkit.yaml")
	require.NoError(t, WriteAsset(path))

	e, err := Load(t.Context(), path)
	require.NoError(t, err)
	c, ok := e.Table().BySymbol("C")
	require.True(t, ok)
	assert.Equal(t, 6, c.Number)
	assert.Equal(t, 4, c.MaxValence())

	_, err = Load(t.Context(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: 1\nelements:\n  - {symbol: H, number: 1, color: \"#FFFFFF\"}\n"), 0o644))
	_, err = Load(t.Context(), bad)
	assert.ErrorContains(t, err, "misses C")
}

func TestParseTable_Invalid(t *testing.T) {
	for _, data := range []string{
		"",
		"version: 1\nelements: []\n",
		"elements:\n  - {symbol: C, number: 6, color: nothex}\n",
		"elements:\n  - {symbol: C, number: 6, color: \"#000000\"}\n  - {symbol: C, number: 6, color: \"#000000\"}\n",
		"elements: [",
	} {
		_, err := ParseTable([]byte(data))
		assert.Error(t, err, data)
	}
}
