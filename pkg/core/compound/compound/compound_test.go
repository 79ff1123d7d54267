package compound

import (
	"context"
	"testing"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/compound"
	"github.com/scienceol/molbank/pkg/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

type stubPubChem struct {
	props *repo.CompoundProperties
	err   error
	names []string
}

func (s *stubPubChem) GetCompoundByName(_ context.Context, name string) (*repo.CompoundProperties, error) {
	s.names = append(s.names, name)
	return s.props, s.err
}

func TestDrugLikeness(t *testing.T) {
	tests := []struct {
		name  string
		props repo.CompoundProperties
		score int
		bio   compound.Bioavailability
	}{
		{"aspirin", repo.CompoundProperties{MolecularWeight: 180.16, XLogP: ptr(1.2), HBondDonorCount: 1, HBondAcceptorCount: 4}, 4, compound.BioHigh},
		{"boundaries", repo.CompoundProperties{MolecularWeight: 500, XLogP: ptr(5), HBondDonorCount: 5, HBondAcceptorCount: 10}, 4, compound.BioHigh},
		{"heavy", repo.CompoundProperties{MolecularWeight: 500.01, XLogP: ptr(2), HBondDonorCount: 1, HBondAcceptorCount: 2}, 3, compound.BioGood},
		{"no xlogp", repo.CompoundProperties{MolecularWeight: 600, HBondDonorCount: 1, HBondAcceptorCount: 2}, 2, compound.BioModerate},
		{"none", repo.CompoundProperties{MolecularWeight: 900, XLogP: ptr(7), HBondDonorCount: 6, HBondAcceptorCount: 11}, 0, compound.BioLow},
		{"one", repo.CompoundProperties{MolecularWeight: 900, XLogP: ptr(7), HBondDonorCount: 6, HBondAcceptorCount: 3}, 1, compound.BioLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.score, DrugLikenessScore(&tt.props))
			assert.Equal(t, tt.bio, BioavailabilityOf(tt.score))
		})
	}
}

func TestSolubility(t *testing.T) {
	tests := []struct {
		xlogp *float64
		want  compound.Solubility
	}{
		{ptr(-0.5), compound.SolVeryHigh},
		{ptr(0), compound.SolHigh},
		{ptr(1), compound.SolHigh},
		{ptr(2.9), compound.SolModerate},
		{ptr(3), compound.SolModerate},
		{ptr(5), compound.SolLow},
		{ptr(5.1), compound.SolVeryLow},
		{nil, compound.SolVeryLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SolubilityOf(tt.xlogp))
	}
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	stub := &stubPubChem{props: &repo.CompoundProperties{
		MolecularFormula: "C9H8O4", MolecularWeight: 180.16, XLogP: ptr(1.2),
		HBondDonorCount: 1, HBondAcceptorCount: 4, RotatableBondCount: 3,
	}}
	s := NewCompoundWithRepo(stub)

	resp, err := s.Lookup(ctx, "  aspirin ")
	require.NoError(t, err)
	assert.Equal(t, []string{"aspirin"}, stub.names)
	assert.Equal(t, "C9H8O4", resp.Properties.MolecularFormula)
	assert.Equal(t, &compound.Prediction{
		DrugLikenessScore: 4,
		Bioavailability:   compound.BioHigh,
		Solubility:        compound.SolModerate,
		Lipinski:          compound.Lipinski{MolecularWeight: true, XLogP: true, HBondDonor: true, HBondAcceptor: true},
		RotatableBondsOK:  true,
	}, resp.Prediction)

	_, err = s.Lookup(ctx, " ")
	assert.ErrorIs(t, err, code.ParamErr)

	stub.err = code.CompoundNotFoundErr
	_, err = s.Lookup(ctx, "nothing")
	assert.ErrorIs(t, err, code.CompoundNotFoundErr)
}
