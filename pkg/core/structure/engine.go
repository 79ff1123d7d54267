package structure

import (
	"context"
	"image/draw"
	"sync"
	"sync/atomic"

	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/chem"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// Engine is the shared, read-only cheminformatics handle.
type Engine interface {
	GetMol(smiles string) (Molecule, error)
	GetQMol(smarts string) (Query, error)
}

// Molecule is owned by exactly one render call and must be deleted before
// that call returns.
type Molecule interface {
	SubstructMatches(q Query) ([]chem.Match, error)
	SVG(opts map[string]any) (string, error)
	Draw(dst draw.Image, opts map[string]any) error
	Delete()
}

type Query interface {
	Delete()
}

type chemEngine struct {
	e *chem.Engine
}

type chemMol struct {
	*chem.Mol
}

type chemQuery struct {
	*chem.QueryMol
}

// NewChemEngine adapts a loaded chem engine.
func NewChemEngine(e *chem.Engine) Engine {
	return &chemEngine{e: e}
}

func (c *chemEngine) GetMol(smiles string) (Molecule, error) {
	m, err := c.e.GetMol(smiles)
	if err != nil {
		return nil, err
	}
	return &chemMol{Mol: m}, nil
}

func (c *chemEngine) GetQMol(smarts string) (Query, error) {
	q, err := c.e.GetQMol(smarts)
	if err != nil {
		return nil, err
	}
	return &chemQuery{QueryMol: q}, nil
}

func (m *chemMol) SubstructMatches(q Query) ([]chem.Match, error) {
	cq, ok := q.(*chemQuery)
	if !ok {
		return nil, code.InvalidSubStructureErr.WithMsg("query from a different engine")
	}
	return m.Mol.SubstructMatches(cq.QueryMol)
}

type LoadFunc func(ctx context.Context) (Engine, error)

type LoadStatus int

const (
	LoadIdle LoadStatus = iota
	LoadPending
	LoadDone
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadPending:
		return "pending"
	case LoadDone:
		return "ok"
	case LoadFailed:
		return "failed"
	default:
		return "idle"
	}
}

type future struct {
	done   chan struct{}
	engine Engine
	err    error
}

// Loader runs its LoadFunc at most once. Every Get, concurrent or later,
// observes the same engine or the same error; a failed load is never
// retried.
type Loader struct {
	load LoadFunc
	once sync.Once
	f    atomic.Pointer[future]
}

func NewLoader(load LoadFunc) *Loader {
	return &Loader{load: load}
}

// Get waits for the shared load. Cancelling ctx abandons only this wait.
func (l *Loader) Get(ctx context.Context) (Engine, error) {
	l.once.Do(func() {
		f := &future{done: make(chan struct{})}
		l.f.Store(f)
		loadCtx := context.WithoutCancel(ctx)
		go func() {
			defer close(f.done)
			if err := utils.SafelyRun(func() {
				f.engine, f.err = l.load(loadCtx)
			}); err != nil {
				f.engine, f.err = nil, err
			}
			if f.err != nil {
				f.engine = nil
				f.err = code.EngineUnavailableErr.WithErr(f.err)
				logger.Errorf(loadCtx, "structure engine load fail err: %+v", f.err)
				return
			}
			logger.Infof(loadCtx, "structure engine loaded")
		}()
	})

	f := l.f.Load()
	select {
	case <-f.done:
		return f.engine, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) Status() LoadStatus {
	f := l.f.Load()
	if f == nil {
		return LoadIdle
	}
	select {
	case <-f.done:
		if f.err != nil {
			return LoadFailed
		}
		return LoadDone
	default:
		return LoadPending
	}
}

var (
	defaultLoader *Loader
	loaderOnce    sync.Once
)

func engineLoader() *Loader {
	loaderOnce.Do(func() {
		defaultLoader = NewLoader(loadChemEngine)
	})
	return defaultLoader
}

// GetEngine is the process-wide engine accessor.
func GetEngine(ctx context.Context) (Engine, error) {
	return engineLoader().Get(ctx)
}

func EngineStatus() LoadStatus {
	return engineLoader().Status()
}

var probeStructures = []string{"CCO", "c1ccccc1", "CC(=O)Oc1ccccc1C(=O)O"}

func loadChemEngine(ctx context.Context) (Engine, error) {
	path := config.Global().Engine.AssetPath
	e, err := chem.Load(ctx, path)
	if err != nil {
		return nil, code.EngineAssetErr.WithErr(err)
	}

	// 资产能加载但元素表残缺时，探测解析会失败
	g, _ := errgroup.WithContext(ctx)
	for _, smiles := range probeStructures {
		g.Go(func() error {
			m, err := e.GetMol(smiles)
			if err != nil {
				return err
			}
			m.Delete()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, code.EngineAssetErr.WithErr(err)
	}
	return NewChemEngine(e), nil
}
