package compound

import (
	"context"
	"strings"

	"github.com/scienceol/molbank/pkg/common/code"
	"github.com/scienceol/molbank/pkg/core/compound"
	"github.com/scienceol/molbank/pkg/middleware/logger"
	"github.com/scienceol/molbank/pkg/repo"
	"github.com/scienceol/molbank/pkg/repo/pubchem"
)

type compoundImpl struct {
	pubchem repo.PubChemRepo
}

func NewCompound() compound.Service {
	return NewCompoundWithRepo(pubchem.NewPubChemRepo())
}

func NewCompoundWithRepo(p repo.PubChemRepo) compound.Service {
	return &compoundImpl{pubchem: p}
}

func (c *compoundImpl) Lookup(ctx context.Context, name string) (*compound.LookupResp, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, code.ParamErr.WithMsg("compound name is empty")
	}
	props, err := c.pubchem.GetCompoundByName(ctx, name)
	if err != nil {
		logger.Warnf(ctx, "lookup compound name: %s err: %+v", name, err)
		return nil, err
	}
	return &compound.LookupResp{
		Name:       name,
		Properties: props,
		Prediction: Predict(props),
	}, nil
}

// Predict 缺失的 XLogP 视为不满足所有阈值
func Predict(p *repo.CompoundProperties) *compound.Prediction {
	rules := compound.Lipinski{
		MolecularWeight: p.MolecularWeight <= 500,
		XLogP:           p.XLogP != nil && *p.XLogP <= 5,
		HBondDonor:      p.HBondDonorCount <= 5,
		HBondAcceptor:   p.HBondAcceptorCount <= 10,
	}
	score := DrugLikenessScore(p)
	return &compound.Prediction{
		DrugLikenessScore: score,
		Bioavailability:   BioavailabilityOf(score),
		Solubility:        SolubilityOf(p.XLogP),
		Lipinski:          rules,
		RotatableBondsOK:  p.RotatableBondCount <= 10,
	}
}

func DrugLikenessScore(p *repo.CompoundProperties) int {
	score := 0
	if p.MolecularWeight <= 500 {
		score++
	}
	if p.XLogP != nil && *p.XLogP <= 5 {
		score++
	}
	if p.HBondDonorCount <= 5 {
		score++
	}
	if p.HBondAcceptorCount <= 10 {
		score++
	}
	return score
}

func BioavailabilityOf(score int) compound.Bioavailability {
	switch score {
	case 4:
		return compound.BioHigh
	case 3:
		return compound.BioGood
	case 2:
		return compound.BioModerate
	default:
		return compound.BioLow
	}
}

func SolubilityOf(xlogp *float64) compound.Solubility {
	if xlogp == nil {
		return compound.SolVeryLow
	}
	switch v := *xlogp; {
	case v < 0:
		return compound.SolVeryHigh
	case v <= 1:
		return compound.SolHigh
	case v <= 3:
		return compound.SolModerate
	case v <= 5:
		return compound.SolLow
	default:
		return compound.SolVeryLow
	}
}
