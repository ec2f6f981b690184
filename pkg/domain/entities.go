// Package domain defines the persistent records, change tracking, and rule
// evaluation primitives shared by the traitcore storage layers.
package domain

import (
	"time"

	"traitcore/pkg/trait"
	"traitcore/pkg/treeseq"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityTreeSequence identifies a stored genealogy record.
	EntityTreeSequence EntityType = "tree_sequence"
	// EntityTraitTable identifies a stored trait effect table record.
	EntityTraitTable EntityType = "trait_table"
)

// Severity grades a rule violation.
type Severity string

// Severities decide whether a violation blocks the commit or is only reported.
const (
	// SeverityBlock aborts the transaction.
	SeverityBlock Severity = "block"
	// SeverityWarn allows the commit but surfaces the violation to callers.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base carries the identity and timestamp fields shared by all records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TreeSequence is a stored genealogy with identifying metadata. Its tables
// are the immutable input of every computation that names the record.
type TreeSequence struct {
	Base
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Tables      treeseq.TableCollection `json:"tables"`
}

// Clone returns a deep copy of the record.
func (ts TreeSequence) Clone() TreeSequence {
	out := ts
	out.Tables = ts.Tables.Clone()
	return out
}

// TraitTable is a stored trait effect table with identifying metadata.
type TraitTable struct {
	Base
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Effects     trait.Table `json:"effects"`
}

// Clone returns a deep copy of the record.
func (tt TraitTable) Clone() TraitTable {
	out := tt
	out.Effects = tt.Effects.Clone()
	return out
}

// Change records one mutation staged inside a transaction. Rules receive the
// full change list before the commit is decided.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action names the kind of mutation a Change carries.
type Action string

// Actions recorded in changes and audit entries.
const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionCompute Action = "compute"
)

// Violation is one finding from a rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result collects the violations produced by a rule pass.
type Result struct {
	Violations []Violation
}

// Merge appends the other result's violations.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking reports whether any violation carries SeverityBlock.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError aborts a commit that produced blocking violations. The
// violations travel in Result.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
