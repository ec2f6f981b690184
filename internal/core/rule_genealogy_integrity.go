package core

import (
	"context"

	"traitcore/pkg/domain"
	"traitcore/pkg/treeseq"
)

// GenealogyIntegrityRule blocks commits of tree sequence records whose
// tables fail structural validation.
func GenealogyIntegrityRule() domain.Rule {
	return genealogyIntegrityRule{}
}

type genealogyIntegrityRule struct{}

func (genealogyIntegrityRule) Name() string { return "genealogy_integrity" }

func (genealogyIntegrityRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	for _, change := range changes {
		if change.Entity != domain.EntityTreeSequence || change.After == nil {
			continue
		}
		if change.Action != domain.ActionCreate && change.Action != domain.ActionUpdate {
			continue
		}
		record, ok := change.After.(domain.TreeSequence)
		if !ok {
			continue
		}
		for _, problem := range treeseq.Validate(record.Tables) {
			res.Violations = append(res.Violations, genealogyViolation(record.ID, problem.String()))
		}
	}

	return res, nil
}

func genealogyViolation(entityID, message string) domain.Violation {
	return domain.Violation{
		Rule:     "genealogy_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   domain.EntityTreeSequence,
		EntityID: entityID,
	}
}
