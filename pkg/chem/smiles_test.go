package chem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return New(DefaultTable())
}

func TestGetMol_Valid(t *testing.T) {
	e := testEngine(t)
	cases := []struct {
		smiles string
		atoms  int
		bonds  int
	}{
		{"CCO", 3, 2},
		{"c1ccccc1", 6, 6},
		{"CC(=O)Oc1ccccc1C(=O)O", 13, 13},
		{"C1CC1", 3, 3},
		{"c1ccncc1", 6, 6},
		{"c1cc[nH]c1", 5, 5},
		{"[NH4+]", 1, 0},
		{"[13CH4]", 1, 0},
		{"N[C@@H](C)C(=O)O", 6, 5},
		{"C%10CC%10", 3, 3},
		{"[Na+].[Cl-]", 2, 0},
		{"ClCBr", 3, 2},
		{"C#N", 2, 1},
	}
	for _, tc := range cases {
		t.Run(tc.smiles, func(t *testing.T) {
			m, err := e.GetMol(tc.smiles)
			require.NoError(t, err)
			defer m.Delete()
			assert.Equal(t, tc.atoms, m.NumAtoms())
			assert.Equal(t, tc.bonds, m.NumBonds())
			assert.Equal(t, tc.smiles, m.Input())
		})
	}
	assert.Zero(t, e.Live())
}

func TestGetMol_Invalid(t *testing.T) {
	e := testEngine(t)
	for _, smiles := range []string{
		"",
		"   ",
		"C1CC",
		"C(C",
		"CC)",
		"C=",
		"=C",
		"C==C",
		"CXC",
		"C[Xx]",
		"c1cccc1",
		"CC(C)(C)(C)(C)C",
		"cc",
		"C11",
		"C=1CC-1",
		"[CH4",
		"CC.",
		".CC",
		"C..C",
	} {
		t.Run(smiles, func(t *testing.T) {
			m, err := e.GetMol(smiles)
			require.Error(t, err)
			assert.Nil(t, m)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
	assert.Zero(t, e.Live())
}

func TestGetMol_Hydrogens(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("CC(=O)O")
	require.NoError(t, err)
	defer m.Delete()

	want := []int{3, 0, 0, 1}
	for i, h := range want {
		a := m.Atom(i)
		assert.Equal(t, h, a.TotalH(), "atom %d", i)
	}
}

func TestGetMol_Kekulize(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("c1ccccc1")
	require.NoError(t, err)
	defer m.Delete()

	doubles := 0
	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		assert.Equal(t, BondAromatic, b.Order)
		if b.Kekule == BondDouble {
			doubles++
		}
	}
	assert.Equal(t, 3, doubles)
	for i := 0; i < m.NumAtoms(); i++ {
		a := m.Atom(i)
		assert.Equal(t, 1, a.TotalH())
	}
}

func TestGetMol_AromaticPerception(t *testing.T) {
	e := testEngine(t)
	cases := []struct {
		smiles   string
		aromatic []int
	}{
		{"C1=CC=CC=C1", []int{0, 1, 2, 3, 4, 5}},
		{"C1=CC=CN1", []int{0, 1, 2, 3, 4}},
		{"C1=CC=CO1", []int{0, 1, 2, 3, 4}},
		{"O=C1C=CC=CN1", []int{1, 2, 3, 4, 5, 6}},
		{"C1=CC=CC1", nil},
		{"C1=CC=CC=CC=C1", nil},
		{"O=C1C=CC(=O)C=C1", nil},
		{"C1CCCCC1", nil},
	}
	for _, tc := range cases {
		t.Run(tc.smiles, func(t *testing.T) {
			m, err := e.GetMol(tc.smiles)
			require.NoError(t, err)
			defer m.Delete()
			var got []int
			for i := 0; i < m.NumAtoms(); i++ {
				if m.Atom(i).Aromatic {
					got = append(got, i)
				}
			}
			assert.Equal(t, tc.aromatic, got)
		})
	}

	// localized orders survive for drawing
	m, err := e.GetMol("C1=CC=CC=C1")
	require.NoError(t, err)
	defer m.Delete()
	doubles := 0
	for i := 0; i < m.NumBonds(); i++ {
		b := m.Bond(i)
		assert.Equal(t, BondAromatic, b.Order)
		if b.Kekule == BondDouble {
			doubles++
		}
	}
	assert.Equal(t, 3, doubles)
}

func TestGetMol_Bracket(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("[15NH3+:7]")
	require.NoError(t, err)
	defer m.Delete()

	a := m.Atom(0)
	assert.Equal(t, "N", a.Symbol())
	assert.Equal(t, 15, a.Isotope)
	assert.Equal(t, 3, a.TotalH())
	assert.Equal(t, 1, a.Charge)
	assert.Equal(t, 7, a.Class)

	m2, err := e.GetMol("[O--]")
	require.NoError(t, err)
	defer m2.Delete()
	a2 := m2.Atom(0)
	assert.Equal(t, -2, a2.Charge)
}

func TestGetMol_Chirality(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("N[C@@H](C)C(=O)O")
	require.NoError(t, err)
	defer m.Delete()
	a := m.Atom(1)
	assert.Equal(t, ChiralCW, a.Chiral)
	assert.Equal(t, "@@", a.Chiral.String())
}

func TestGetQMol(t *testing.T) {
	e := testEngine(t)
	for _, smarts := range []string{"CO", "C~O", "*", "[#6]", "a1aaaaa1", "C(=O)[OH]"} {
		q, err := e.GetQMol(smarts)
		require.NoError(t, err, smarts)
		assert.Equal(t, smarts, q.Input())
		q.Delete()
	}
	_, err := e.GetQMol("C(")
	assert.Error(t, err)
	assert.Zero(t, e.Live())
}

func TestDelete(t *testing.T) {
	e := testEngine(t)
	m, err := e.GetMol("CCO")
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.Live())

	m.Delete()
	m.Delete()
	assert.Zero(t, e.Live())

	_, err = m.SVG(nil)
	assert.ErrorIs(t, err, ErrDeleted)
	_, err = m.Weight()
	assert.ErrorIs(t, err, ErrDeleted)
}
