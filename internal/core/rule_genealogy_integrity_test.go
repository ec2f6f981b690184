package core

import (
	"context"
	"errors"
	"testing"

	"traitcore/pkg/domain"
	"traitcore/pkg/treeseq"
)

func brokenCollection() treeseq.TableCollection {
	tc := workedCollection()
	tc.Edges[0].Parent = 99
	return tc
}

func TestGenealogyIntegrityAcceptsValidTables(t *testing.T) {
	rule := GenealogyIntegrityRule()
	changes := []domain.Change{{
		Entity: domain.EntityTreeSequence,
		Action: domain.ActionCreate,
		After:  domain.TreeSequence{Base: domain.Base{ID: "ts-1"}, Tables: workedCollection()},
	}}

	res, err := rule.Evaluate(context.Background(), nil, changes)
	if err != nil {
		t.Fatalf("evaluate genealogy rule: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", res.Violations)
	}
}

func TestGenealogyIntegrityBlocksBrokenTables(t *testing.T) {
	rule := GenealogyIntegrityRule()
	changes := []domain.Change{{
		Entity: domain.EntityTreeSequence,
		Action: domain.ActionUpdate,
		After:  domain.TreeSequence{Base: domain.Base{ID: "ts-1"}, Tables: brokenCollection()},
	}}

	res, err := rule.Evaluate(context.Background(), nil, changes)
	if err != nil {
		t.Fatalf("evaluate genealogy rule: %v", err)
	}
	if len(res.Violations) == 0 {
		t.Fatalf("expected violations for dangling edge parent")
	}
	for _, v := range res.Violations {
		if v.Rule != "genealogy_integrity" || v.Severity != domain.SeverityBlock {
			t.Fatalf("unexpected violation: %+v", v)
		}
		if v.Entity != domain.EntityTreeSequence || v.EntityID != "ts-1" {
			t.Fatalf("violation misattributed: %+v", v)
		}
	}
}

func TestGenealogyIntegrityIgnoresOtherChanges(t *testing.T) {
	rule := GenealogyIntegrityRule()
	changes := []domain.Change{
		{Entity: domain.EntityTraitTable, Action: domain.ActionCreate, After: domain.TraitTable{}},
		{Entity: domain.EntityTreeSequence, Action: domain.ActionDelete, After: domain.TreeSequence{Base: domain.Base{ID: "gone"}, Tables: brokenCollection()}},
		{Entity: domain.EntityTreeSequence, Action: domain.ActionCreate, After: nil},
	}

	res, err := rule.Evaluate(context.Background(), nil, changes)
	if err != nil {
		t.Fatalf("evaluate genealogy rule: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected no violations, got %+v", res.Violations)
	}
}

func TestGenealogyIntegrityBlocksCommit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(NewDefaultRulesEngine())

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateTreeSequence(domain.TreeSequence{
			Base:   domain.Base{ID: "bad"},
			Name:   "broken",
			Tables: brokenCollection(),
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if !violation.Result.HasBlocking() {
		t.Fatalf("expected blocking result, got %+v", violation.Result)
	}
	if _, found := store.GetTreeSequence("bad"); found {
		t.Fatalf("blocked record must not be committed")
	}
}
