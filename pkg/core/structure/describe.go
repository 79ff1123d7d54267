package structure

import (
	"context"

	"github.com/scienceol/molbank/pkg/common/code"
)

// Descriptor is implemented by molecules that can report composition.
type Descriptor interface {
	Formula() (string, error)
	Weight() (float64, error)
}

type Description struct {
	Formula string  `json:"formula"`
	Weight  float64 `json:"weight"`
}

// Describe parses smiles on eng and returns its formula and average weight.
func Describe(_ context.Context, eng Engine, smiles string) (*Description, error) {
	mol, err := eng.GetMol(smiles)
	if err != nil {
		if mol != nil {
			mol.Delete()
		}
		return nil, code.InvalidStructureErr.WithErr(err)
	}
	defer mol.Delete()

	d, ok := mol.(Descriptor)
	if !ok {
		return nil, code.EngineUnavailableErr.WithMsg("engine cannot describe molecules")
	}
	formula, err := d.Formula()
	if err != nil {
		return nil, code.InvalidStructureErr.WithErr(err)
	}
	weight, err := d.Weight()
	if err != nil {
		return nil, code.InvalidStructureErr.WithErr(err)
	}
	return &Description{Formula: formula, Weight: weight}, nil
}
