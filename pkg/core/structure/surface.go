package structure

import (
	"image"
	"image/draw"

	"github.com/alphadose/haxmap"
	"github.com/scienceol/molbank/pkg/common/uuid"
)

// Surfaces maps surface ids to pixel targets, the way a page maps element
// ids to canvases.
type Surfaces struct {
	m *haxmap.Map[string, draw.Image]
}

func NewSurfaces() *Surfaces {
	return &Surfaces{m: haxmap.New[string, draw.Image]()}
}

func (s *Surfaces) Register(id string, img draw.Image) {
	s.m.Set(id, img)
}

// Allocate creates an RGBA surface of the given size under a fresh id.
func (s *Surfaces) Allocate(width, height int) (string, *image.RGBA) {
	id := uuid.NewV4().String()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	s.m.Set(id, img)
	return id, img
}

func (s *Surfaces) Get(id string) (draw.Image, bool) {
	return s.m.Get(id)
}

func (s *Surfaces) Release(id string) {
	s.m.Del(id)
}

func (s *Surfaces) Len() int {
	return int(s.m.Len())
}

var defaultSurfaces = NewSurfaces()

// DefaultSurfaces is the process-wide registry used by renderers created
// without WithSurfaces.
func DefaultSurfaces() *Surfaces {
	return defaultSurfaces
}
