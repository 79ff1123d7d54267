package molecule

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scienceol/molbank/pkg/chem"
	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/molecule"
	"github.com/scienceol/molbank/pkg/core/notify"
	"github.com/scienceol/molbank/pkg/core/notify/events"
	"github.com/scienceol/molbank/pkg/core/structure"
	"github.com/scienceol/molbank/pkg/repo"
	"github.com/scienceol/molbank/pkg/repo/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 17, 23, 30, 0, 0, time.UTC) }

func chemEngine(context.Context) (structure.Engine, error) {
	return structure.NewChemEngine(chem.New(chem.DefaultTable())), nil
}

type harness struct {
	store  repo.KVStore
	center *events.LocalEvents
	msgs   []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  kv.NewFile(filepath.Join(t.TempDir(), "local_storage.json")),
		center: events.NewLocalEvents(),
	}
	require.NoError(t, h.center.Registry(context.Background(), notify.MoleculeModify, func(_ context.Context, msg string) error {
		h.msgs = append(h.msgs, msg)
		return nil
	}))
	return h
}

func (h *harness) service(t *testing.T, opts ...Option) molecule.Service {
	t.Helper()
	opts = append([]Option{
		WithStore(h.store),
		WithMsgCenter(h.center),
		WithEngine(chemEngine),
		WithClock(fixedNow),
		WithKey("molecules"),
	}, opts...)
	s, err := NewMolecule(context.Background(), opts...)
	require.NoError(t, err)
	return s
}

func TestList_Defaults(t *testing.T) {
	h := newHarness(t)
	s := h.service(t)

	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 10)
	assert.Equal(t, "Aspirin", items[0].MoleculeName)
	assert.Equal(t, "Ethanol", items[9].MoleculeName)
	for _, item := range items {
		assert.Equal(t, "2023-01-01", item.DateAdded)
	}

	// the caller cannot mutate the collection
	items[0].MoleculeName = "changed"
	again, _ := s.List(context.Background())
	assert.Equal(t, "Aspirin", again[0].MoleculeName)
}

func TestList_CorruptValue(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(context.Background(), "molecules", []byte(`{"not":"a list"}`)))

	items, err := h.service(t).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestAdd_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := h.service(t)

	added, err := s.Add(ctx, &molecule.AddReq{
		MoleculeName:    "Propanol",
		SmilesStructure: "CCCO",
		CategoryUsage:   "Solvent",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "2024-05-17", added.DateAdded)
	assert.InDelta(t, 60.1, added.MolecularWeight, 0.01)

	given, err := s.Add(ctx, &molecule.AddReq{MoleculeName: "Water", SmilesStructure: "O", MolecularWeight: 18})
	require.NoError(t, err)
	assert.Equal(t, 18.0, given.MolecularWeight)

	before, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 12)

	// a fresh service on the same store reloads the identical list
	after, err := h.service(t).List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("reloaded collection mismatch (-want +got):\n%s", diff)
	}

	raw, err := h.store.Get(ctx, "molecules")
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "Propanol", stored[10]["moleculeName"])
	assert.Equal(t, "CCCO", stored[10]["smilesStructure"])

	require.Len(t, h.msgs, 2)
	msg := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(h.msgs[0]), &msg))
	assert.Equal(t, "molecule-modify", msg["action"])
	assert.Equal(t, "add", msg["data"].(map[string]any)["op"])
}

func TestAdd_Invalid(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := h.service(t)

	_, err := s.Add(ctx, &molecule.AddReq{MoleculeName: " ", SmilesStructure: "C"})
	assert.ErrorIs(t, err, code.MoleculeParamEmptyErr)
	_, err = s.Add(ctx, &molecule.AddReq{MoleculeName: "x"})
	assert.ErrorIs(t, err, code.MoleculeParamEmptyErr)

	// unparsable structures are kept with no weight
	item, err := s.Add(ctx, &molecule.AddReq{MoleculeName: "broken", SmilesStructure: "C1CC"})
	require.NoError(t, err)
	assert.Zero(t, item.MolecularWeight)
}

func TestAdd_EngineUnavailable(t *testing.T) {
	h := newHarness(t)
	s := h.service(t, WithEngine(func(context.Context) (structure.Engine, error) {
		return nil, code.EngineUnavailableErr.WithErr(errors.New("no asset"))
	}))
	item, err := s.Add(context.Background(), &molecule.AddReq{MoleculeName: "Ethanol", SmilesStructure: "CCO"})
	require.NoError(t, err)
	assert.Zero(t, item.MolecularWeight)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := h.service(t)

	require.NoError(t, s.Remove(ctx, "3"))
	items, _ := s.List(ctx)
	require.Len(t, items, 9)
	for _, item := range items {
		assert.NotEqual(t, "3", item.ID)
	}
	assert.ErrorIs(t, s.Remove(ctx, "3"), code.MoleculeNotFoundErr)

	reloaded, _ := h.service(t).List(ctx)
	assert.Len(t, reloaded, 9)
	require.Len(t, h.msgs, 1)

	// an emptied collection stays empty
	for _, item := range items {
		require.NoError(t, s.Remove(ctx, item.ID))
	}
	reloaded, _ = h.service(t).List(ctx)
	assert.Empty(t, reloaded)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newHarness(t).service(t)

	names := func(items []*molecule.Molecule) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.MoleculeName)
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"ASPIRIN", []string{"Aspirin"}},
		{"stimulant", []string{"Caffeine", "Nicotine"}},
		{"pain reliever", []string{"Aspirin", "Ibuprofen", "Acetaminophen", "Morphine"}},
		{"cco", []string{"Ethanol"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(ctx, tt.query)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Len(t, got, 10)
				return
			}
			assert.Equal(t, tt.want, names(got))
		})
	}
}
