package core

import (
	"context"
	"fmt"

	"traitcore/pkg/domain"
	"traitcore/pkg/treeseq"
)

// TraitReferenceRule validates trait table records on commit. Negative site
// or trait ids can never resolve against any genealogy and block the
// transaction. Duplicate (site, trait) pairs and non-finite effect sizes are
// legal under the mutation attribution model, so they only warn.
func TraitReferenceRule() domain.Rule {
	return traitReferenceRule{}
}

type traitReferenceRule struct{}

func (traitReferenceRule) Name() string { return "trait_reference" }

func (traitReferenceRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	for _, change := range changes {
		if change.Entity != domain.EntityTraitTable || change.After == nil {
			continue
		}
		if change.Action != domain.ActionCreate && change.Action != domain.ActionUpdate {
			continue
		}
		record, ok := change.After.(domain.TraitTable)
		if !ok {
			continue
		}
		evaluateTraitTable(&res, record)
	}

	return res, nil
}

func evaluateTraitTable(res *domain.Result, record domain.TraitTable) {
	type key struct {
		site  treeseq.ID
		trait int
	}
	seen := make(map[key]struct{}, len(record.Effects.Entries))

	for i, entry := range record.Effects.Entries {
		if entry.Site < 0 {
			res.Violations = append(res.Violations, traitReferenceViolation(record.ID, domain.SeverityBlock,
				fmt.Sprintf("entry %d references negative site id %d", i, entry.Site)))
		}
		if entry.Trait < 0 {
			res.Violations = append(res.Violations, traitReferenceViolation(record.ID, domain.SeverityBlock,
				fmt.Sprintf("entry %d references negative trait id %d", i, entry.Trait)))
		}
		if !entry.Finite() {
			res.Violations = append(res.Violations, traitReferenceViolation(record.ID, domain.SeverityWarn,
				fmt.Sprintf("entry %d carries non-finite effect size %v", i, entry.EffectSize)))
		}
		k := key{site: entry.Site, trait: entry.Trait}
		if _, dup := seen[k]; dup {
			res.Violations = append(res.Violations, traitReferenceViolation(record.ID, domain.SeverityWarn,
				fmt.Sprintf("site %d trait %d carries multiple entries", entry.Site, entry.Trait)))
			continue
		}
		seen[k] = struct{}{}
	}
}

func traitReferenceViolation(entityID string, severity domain.Severity, message string) domain.Violation {
	return domain.Violation{
		Rule:     "trait_reference",
		Severity: severity,
		Message:  message,
		Entity:   domain.EntityTraitTable,
		EntityID: entityID,
	}
}
