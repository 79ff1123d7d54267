package chem

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matches(t *testing.T, e *Engine, smiles, smarts string) []Match {
	t.Helper()
	m, err := e.GetMol(smiles)
	require.NoError(t, err)
	defer m.Delete()
	q, err := e.GetQMol(smarts)
	require.NoError(t, err)
	defer q.Delete()

	out, err := m.SubstructMatches(q)
	require.NoError(t, err)
	return out
}

func TestSubstructMatches_TwoGroups(t *testing.T) {
	e := testEngine(t)
	got := matches(t, e, "OCCO", "CO")
	want := []Match{
		{Atoms: []int{1, 0}, Bonds: []int{0}},
		{Atoms: []int{2, 3}, Bonds: []int{2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, e.Live())
}

func TestSubstructMatches_Symmetry(t *testing.T) {
	e := testEngine(t)
	got := matches(t, e, "c1ccccc1", "c1ccccc1")
	require.Len(t, got, 1)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, got[0].Atoms)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, got[0].Bonds)
}

func TestSubstructMatches_Carboxyl(t *testing.T) {
	e := testEngine(t)
	got := matches(t, e, "CC(=O)Oc1ccccc1C(=O)O", "C(=O)O")
	require.Len(t, got, 2)
	assert.Equal(t, []int{1, 2, 3}, got[0].Atoms)
	assert.Equal(t, []int{10, 11, 12}, got[1].Atoms)
}

func TestSubstructMatches_Wildcards(t *testing.T) {
	e := testEngine(t)
	cases := []struct {
		smiles, smarts string
		n              int
	}{
		{"CCO", "C~O", 1},
		{"CC=O", "C~O", 1},
		{"CC=O", "CO", 0},
		{"CCO", "*", 3},
		{"c1ccccc1O", "a", 6},
		{"c1ccccc1O", "A", 1},
		{"c1ccccc1O", "[#6]", 6},
		{"c1ccccc1O", "cO", 1},
		{"c1ccccc1O", "CO", 0},
		{"CC(=O)O", "C(=O)[OH]", 1},
		{"CC(=O)[O-]", "C(=O)[OH]", 0},
		{"CCO", "N", 0},
		{"C", "CC", 0},
		{"C1=CC=CC=C1", "cc", 6},
		{"C1=CC=CC=C1", "C=C", 0},
		{"C1=CC=CC=C1", "c1ccccc1", 1},
		{"CN1CCCC1C2=CN=CC=C2", "c1ccncc1", 1},
		{"C1=CC=CC1", "cc", 0},
	}
	for _, tc := range cases {
		t.Run(tc.smiles+"/"+tc.smarts, func(t *testing.T) {
			assert.Len(t, matches(t, e, tc.smiles, tc.smarts), tc.n)
		})
	}
}

func TestSubstructMatches_Deleted(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("CCO")
	require.NoError(t, err)
	q, err := e.GetQMol("O")
	require.NoError(t, err)
	q.Delete()

	_, err = m.SubstructMatches(q)
	assert.ErrorIs(t, err, ErrDeleted)
	m.Delete()
}
