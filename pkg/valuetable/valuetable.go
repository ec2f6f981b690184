// Package valuetable materializes computed edge effects and genetic values
// as ordered tabular rows.
package valuetable

import (
	"fmt"
	"sort"
)

// Level selects the aggregation level of a genetic value table.
type Level string

const (
	LevelEdge       Level = "edge"
	LevelNode       Level = "node"
	LevelIndividual Level = "individual"
)

// DefaultLevel is used when no level is requested.
const DefaultLevel = LevelIndividual

// ParseLevel maps a textual level name to a Level. An empty string yields
// DefaultLevel.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "":
		return DefaultLevel, nil
	case LevelEdge, LevelNode, LevelIndividual:
		return Level(s), nil
	default:
		return "", fmt.Errorf("unknown aggregation level %q", s)
	}
}

// IDColumn returns the entity id column name for the level.
func (l Level) IDColumn() string {
	return string(l) + "_id"
}

type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

type Row map[string]any

// Table carries an ordered sequence of rows under a fixed schema.
type Table struct {
	Schema []Column `json:"schema"`
	Rows   []Row    `json:"rows"`
}

// ColumnTrait is the trait id column shared by every table shape.
const ColumnTrait = "trait_id"

// ColumnEffectSize is the value column of edge effect tables.
const ColumnEffectSize = "effect_size"

// ColumnGeneticValue is the value column of genetic value tables.
const ColumnGeneticValue = "genetic_value"

// EdgeEffectSchema describes rows of shape {trait_id, edge_id, effect_size}.
func EdgeEffectSchema() []Column {
	return []Column{
		{Name: ColumnTrait, Type: "integer", Description: "trait identifier"},
		{Name: LevelEdge.IDColumn(), Type: "integer", Description: "edge identifier"},
		{Name: ColumnEffectSize, Type: "number", Description: "summed effect of mutations on the edge"},
	}
}

// GeneticValueSchema describes rows of shape
// {trait_id, <level>_id, genetic_value}.
func GeneticValueSchema(level Level) []Column {
	return []Column{
		{Name: ColumnTrait, Type: "integer", Description: "trait identifier"},
		{Name: level.IDColumn(), Type: "integer", Description: string(level) + " identifier"},
		{Name: ColumnGeneticValue, Type: "number", Description: "aggregated genetic value"},
	}
}

// Sort orders rows by (trait id, entity id) ascending. Tables built by the
// engine come out already sorted; Sort is idempotent and exported for
// callers that merge tables.
func (t *Table) Sort() {
	if len(t.Schema) < 2 {
		return
	}
	traitCol := t.Schema[0].Name
	entityCol := t.Schema[1].Name
	sort.SliceStable(t.Rows, func(i, j int) bool {
		ti, tj := numeric(t.Rows[i][traitCol]), numeric(t.Rows[j][traitCol])
		if ti != tj {
			return ti < tj
		}
		return numeric(t.Rows[i][entityCol]) < numeric(t.Rows[j][entityCol])
	})
}

// numeric widens the id representations that reach tables: ints from the
// engine, float64 after a JSON round trip.
func numeric(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
