package molecule

import "context"

type Molecule struct {
	ID              string  `json:"id"`
	MoleculeName    string  `json:"moleculeName"`
	SmilesStructure string  `json:"smilesStructure"`
	MolecularWeight float64 `json:"molecularWeight"`
	CategoryUsage   string  `json:"categoryUsage"`
	DateAdded       string  `json:"dateAdded"`
}

type AddReq struct {
	MoleculeName    string  `json:"moleculeName" binding:"required"`
	SmilesStructure string  `json:"smilesStructure" binding:"required"`
	MolecularWeight float64 `json:"molecularWeight"`
	CategoryUsage   string  `json:"categoryUsage"`
}

type ListReq struct {
	Query string `form:"q" json:"q"`
}

type ModifyOp string

const (
	OpAdd    ModifyOp = "add"
	OpRemove ModifyOp = "remove"
)

// ModifyEvent is published on every collection mutation.
type ModifyEvent struct {
	Op       ModifyOp  `json:"op"`
	Molecule *Molecule `json:"molecule"`
}

type Service interface {
	List(ctx context.Context) ([]*Molecule, error)
	Add(ctx context.Context, req *AddReq) (*Molecule, error)
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*Molecule, error)
}
