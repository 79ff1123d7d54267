package molecule

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/scienceol/molbank/internal/config"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/common/uuid"
	"github.com/scienceol/molbank/pkg/core/molecule"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/scienceol/molbank/pkg/core/notify/events"
	"github.com/scienceol/molbank/pkg/core/structure"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo"
	"github.com/scienceol/molbank/pkg/repo/kv"
	"github.com/scienceol/molbank/pkg/utils"
)

type EngineFunc func(ctx context.Context) (structure.Engine, error)

type Option func(*moleculeImpl)

func WithStore(store repo.KVStore) Option {
	return func(m *moleculeImpl) { m.store = store }
}

func WithMsgCenter(center notify.MsgCenter) Option {
	return func(m *moleculeImpl) { m.msgCenter = center }
}

func WithEngine(f EngineFunc) Option {
	return func(m *moleculeImpl) { m.getEngine = f }
}

func WithClock(now func() time.Time) Option {
	return func(m *moleculeImpl) { m.now = now }
}

func WithKey(key string) Option {
	return func(m *moleculeImpl) { m.key = key }
}

type moleculeImpl struct {
	store     repo.KVStore
	msgCenter notify.MsgCenter
	getEngine EngineFunc
	now       func() time.Time
	key       string

	mu        sync.Mutex
	molecules []*molecule.Molecule
}

// NewMolecule 整个列表保存在一个 key 下，启动时整体读取，每次修改整体写回
func NewMolecule(ctx context.Context, opts ...Option) (molecule.Service, error) {
	m := &moleculeImpl{
		getEngine: structure.GetEngine,
		now:       time.Now,
		key:       utils.Or(config.Global().Store.Key, "molecules"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		store, err := kv.New(ctx)
		if err != nil {
			return nil, err
		}
		m.store = store
	}
	if m.msgCenter == nil {
		m.msgCenter = events.NewEvents()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.load(ctx)
	return m, nil
}

// load 读取失败或内容损坏时回退到默认列表
func (m *moleculeImpl) load(ctx context.Context) {
	data, err := m.store.Get(ctx, m.key)
	if err != nil {
		if !errors.Is(err, code.RecordNotFound) {
			logger.Warnf(ctx, "read molecules err: %+v", err)
		}
		m.molecules = defaultMolecules()
		return
	}
	items := make([]*molecule.Molecule, 0)
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Errorf(ctx, "Error parsing stored molecules: %+v", err)
		m.molecules = defaultMolecules()
		return
	}
	m.molecules = utils.FilterSlice(items, func(item *molecule.Molecule) bool {
		return item != nil
	})
}

func (m *moleculeImpl) save(ctx context.Context, items []*molecule.Molecule) error {
	data, err := json.Marshal(items)
	if err != nil {
		return code.StoreWriteErr.WithErr(err)
	}
	return m.store.Set(ctx, m.key, data)
}

func (m *moleculeImpl) snapshot() []*molecule.Molecule {
	out := make([]*molecule.Molecule, len(m.molecules))
	for i, item := range m.molecules {
		c := *item
		out[i] = &c
	}
	return out
}

func (m *moleculeImpl) List(_ context.Context) ([]*molecule.Molecule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

func (m *moleculeImpl) Add(ctx context.Context, req *molecule.AddReq) (*molecule.Molecule, error) {
	if req == nil || strings.TrimSpace(req.MoleculeName) == "" || strings.TrimSpace(req.SmilesStructure) == "" {
		return nil, code.MoleculeParamEmptyErr
	}
	item := &molecule.Molecule{
		ID:              uuid.NewV4().String(),
		MoleculeName:    req.MoleculeName,
		SmilesStructure: req.SmilesStructure,
		MolecularWeight: req.MolecularWeight,
		CategoryUsage:   req.CategoryUsage,
		DateAdded:       m.now().UTC().Format(time.DateOnly),
	}
	if item.MolecularWeight == 0 {
		item.MolecularWeight = m.weight(ctx, item.SmilesStructure)
	}

	m.mu.Lock()
	next := append(m.snapshot(), item)
	if err := m.save(ctx, next); err != nil {
		m.mu.Unlock()
		logger.Errorf(ctx, "save molecules err: %+v", err)
		return nil, err
	}
	m.molecules = next
	m.mu.Unlock()

	c := *item
	m.broadcast(ctx, molecule.OpAdd, &c)
	return item, nil
}

// weight 尽力计算，引擎不可用或结构无效时保持 0
func (m *moleculeImpl) weight(ctx context.Context, smiles string) float64 {
	eng, err := m.getEngine(ctx)
	if err != nil {
		logger.Warnf(ctx, "engine unavailable, molecular weight left empty err: %+v", err)
		return 0
	}
	d, err := structure.Describe(ctx, eng, smiles)
	if err != nil {
		logger.Warnf(ctx, "describe smiles: %s err: %+v", smiles, err)
		return 0
	}
	return d.Weight
}

func (m *moleculeImpl) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	var removed *molecule.Molecule
	next := utils.FilterSlice(m.snapshot(), func(item *molecule.Molecule) bool {
		if item.ID == id {
			removed = item
			return false
		}
		return true
	})
	if removed == nil {
		m.mu.Unlock()
		return code.MoleculeNotFoundErr.WithMsgf("id: %s", id)
	}
	if err := m.save(ctx, next); err != nil {
		m.mu.Unlock()
		logger.Errorf(ctx, "save molecules err: %+v", err)
		return err
	}
	m.molecules = next
	m.mu.Unlock()

	m.broadcast(ctx, molecule.OpRemove, removed)
	return nil
}

func (m *moleculeImpl) Search(ctx context.Context, query string) ([]*molecule.Molecule, error) {
	items, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return items, nil
	}
	q := strings.ToLower(query)
	return utils.FilterSlice(items, func(item *molecule.Molecule) bool {
		return strings.Contains(strings.ToLower(item.MoleculeName), q) ||
			strings.Contains(strings.ToLower(item.CategoryUsage), q) ||
			strings.Contains(strings.ToLower(item.SmilesStructure), q)
	}), nil
}

func (m *moleculeImpl) broadcast(ctx context.Context, op molecule.ModifyOp, item *molecule.Molecule) {
	err := m.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel: notify.MoleculeModify,
		Data: &molecule.ModifyEvent{
			Op:       op,
			Molecule: item,
		},
	})
	if err != nil {
		logger.Errorf(ctx, "broadcast molecule %s err: %+v", op, err)
	}
}
