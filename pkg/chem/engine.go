// Package chem is a small cheminformatics toolkit: SMILES parsing,
// substructure search, 2D depiction and drawing to SVG markup or to a
// pixel surface.
//
// Every Mol and QueryMol handed out by an Engine must be released with
// Delete once the caller is done with it; Engine.Live reports how many
// handles are still outstanding.
package chem

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
)

type Engine struct {
	table *Table
	live  atomic.Int64
}

// Load reads the element-table asset at path and returns a ready engine.
func Load(ctx context.Context, path string) (*Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine asset: %w", err)
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("engine asset %s: %w", path, err)
	}
	return New(table), nil
}

func New(table *Table) *Engine {
	return &Engine{table: table}
}

func (e *Engine) Table() *Table {
	return e.table
}

// Live returns the number of handles not yet released.
func (e *Engine) Live() int64 {
	return e.live.Load()
}

func (e *Engine) acquire() {
	e.live.Add(1)
}

func (e *Engine) release() {
	e.live.Add(-1)
}

// GetMol parses a SMILES string.
func (e *Engine) GetMol(smiles string) (*Mol, error) {
	g, err := parse(smiles, e.table, false)
	if err != nil {
		return nil, err
	}
	if err := perceive(smiles, g); err != nil {
		return nil, err
	}
	m := &Mol{graph: *g, input: smiles}
	m.engine = e
	e.acquire()
	return m, nil
}

// GetQMol parses a substructure query: SMILES plus the SMARTS wildcards
// '*', 'A', 'a', '~' and [#n].
func (e *Engine) GetQMol(smarts string) (*QueryMol, error) {
	g, err := parse(smarts, e.table, true)
	if err != nil {
		return nil, err
	}
	q := &QueryMol{graph: *g, input: smarts}
	q.engine = e
	e.acquire()
	return q, nil
}
