package compound

import (
	"context"

	"github.com/scienceol/molbank/pkg/repo"
)

type Bioavailability string

const (
	BioHigh     Bioavailability = "High"
	BioGood     Bioavailability = "Good"
	BioModerate Bioavailability = "Moderate"
	BioLow      Bioavailability = "Low"
)

type Solubility string

const (
	SolVeryHigh Solubility = "Very High"
	SolHigh     Solubility = "High"
	SolModerate Solubility = "Moderate"
	SolLow      Solubility = "Low"
	SolVeryLow  Solubility = "Very Low"
)

// Lipinski holds the per-rule outcome of the rule of five.
type Lipinski struct {
	MolecularWeight bool `json:"molecularWeight"`
	XLogP           bool `json:"xlogp"`
	HBondDonor      bool `json:"hBondDonor"`
	HBondAcceptor   bool `json:"hBondAcceptor"`
}

type Prediction struct {
	DrugLikenessScore int             `json:"drugLikenessScore"`
	Bioavailability   Bioavailability `json:"bioavailability"`
	Solubility        Solubility      `json:"solubility"`
	Lipinski          Lipinski        `json:"lipinski"`
	RotatableBondsOK  bool            `json:"rotatableBondsOk"`
}

type LookupResp struct {
	Name       string                   `json:"name"`
	Properties *repo.CompoundProperties `json:"properties"`
	Prediction *Prediction              `json:"prediction"`
}

type Service interface {
	Lookup(ctx context.Context, name string) (*LookupResp, error)
}
