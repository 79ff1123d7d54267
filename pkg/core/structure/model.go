package structure

import (
	"fmt"
	"time"

	"github.com/scienceol/molbank/pkg/chem"
	"github.com/scienceol/molbank/pkg/utils"
)

const (
	DefaultWidth  = 250
	DefaultHeight = 200
)

type RenderRequest struct {
	Structure    string         `json:"structure" form:"structure" binding:"required"`
	SubStructure string         `json:"subStructure" form:"subStructure"`
	SVGMode      bool           `json:"svgMode" form:"svgMode"`
	Width        int            `json:"width" form:"width"`
	Height       int            `json:"height" form:"height"`
	Extra        map[string]any `json:"extra" form:"extra"`
	Score        float64        `json:"score" form:"score"`
	// DrawingDelay 毫秒，0 表示同步绘制
	DrawingDelay int64  `json:"drawingDelay" form:"drawingDelay"`
	SurfaceID    string `json:"surfaceId" form:"surfaceId"`
}

func (r *RenderRequest) normalize() {
	if r.Width <= 0 {
		r.Width = DefaultWidth
	}
	if r.Height <= 0 {
		r.Height = DefaultHeight
	}
	if r.DrawingDelay < 0 {
		r.DrawingDelay = 0
	}
}

func (r *RenderRequest) delay() time.Duration {
	return time.Duration(r.DrawingDelay) * time.Millisecond
}

type Result struct {
	SVG string `json:"svg,omitempty"`
	// Options is the merged option record handed to the engine.
	Options map[string]any `json:"options,omitempty"`
}

type Highlight struct {
	Atoms []int `json:"atoms"`
	Bonds []int `json:"bonds"`
}

func (h *Highlight) empty() bool {
	return len(h.Atoms) == 0 && len(h.Bonds) == 0
}

// union flattens every match group into one highlight set, first-seen
// order, no duplicates.
func union(matches []chem.Match) *Highlight {
	h := &Highlight{Atoms: []int{}, Bonds: []int{}}
	for _, m := range matches {
		h.Atoms = utils.AppendUniqSlice(h.Atoms, m.Atoms...)
		h.Bonds = utils.AppendUniqSlice(h.Bonds, m.Bonds...)
	}
	return h
}

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "uninitialized"
	}
}

func (s State) terminal() bool {
	return s == StateReady || s == StateError
}

type DisplayKind string

const (
	DisplayLoading          DisplayKind = "loading"
	DisplayEngineError      DisplayKind = "engine-error"
	DisplayInvalidStructure DisplayKind = "invalid-structure"
	DisplaySVG              DisplayKind = "svg"
	DisplayCanvas           DisplayKind = "canvas"
)

// Display is what a host shows for one renderer.
type Display struct {
	Kind       DisplayKind `json:"kind"`
	State      string      `json:"state"`
	Title      string      `json:"title,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	Input      string      `json:"input,omitempty"`
	SVG        string      `json:"svg,omitempty"`
	SurfaceID  string      `json:"surfaceId,omitempty"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	ScoreLabel string      `json:"scoreLabel,omitempty"`
}

func scoreLabel(score float64) string {
	if score == 0 {
		return ""
	}
	return fmt.Sprintf("Score: %.2f", score)
}
