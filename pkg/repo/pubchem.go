package repo

import "context"

// CompoundProperties is the property row PubChem returns for a compound.
// XLogP is nil when PubChem has no computed value.
type CompoundProperties struct {
	MolecularFormula   string   `json:"MolecularFormula" mapstructure:"MolecularFormula"`
	MolecularWeight    float64  `json:"MolecularWeight" mapstructure:"MolecularWeight"`
	InChIKey           string   `json:"InChIKey" mapstructure:"InChIKey"`
	IUPACName          string   `json:"IUPACName" mapstructure:"IUPACName"`
	XLogP              *float64 `json:"XLogP" mapstructure:"XLogP"`
	ExactMass          float64  `json:"ExactMass" mapstructure:"ExactMass"`
	MonoisotopicMass   float64  `json:"MonoisotopicMass" mapstructure:"MonoisotopicMass"`
	TPSA               float64  `json:"TPSA" mapstructure:"TPSA"`
	Complexity         float64  `json:"Complexity" mapstructure:"Complexity"`
	Charge             int      `json:"Charge" mapstructure:"Charge"`
	HBondDonorCount    int      `json:"HBondDonorCount" mapstructure:"HBondDonorCount"`
	HBondAcceptorCount int      `json:"HBondAcceptorCount" mapstructure:"HBondAcceptorCount"`
	RotatableBondCount int      `json:"RotatableBondCount" mapstructure:"RotatableBondCount"`
	HeavyAtomCount     int      `json:"HeavyAtomCount" mapstructure:"HeavyAtomCount"`
}

type PubChemRepo interface {
	GetCompoundByName(ctx context.Context, name string) (*CompoundProperties, error)
}
