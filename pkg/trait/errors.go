package trait

import (
	"fmt"

	"traitcore/pkg/treeseq"
)

// UnknownSiteError reports a trait entry naming a site with no recorded
// mutations. It aborts the whole computation; no partial output is produced.
type UnknownSiteError struct {
	Site  treeseq.ID
	Trait int
}

func (e UnknownSiteError) Error() string {
	return fmt.Sprintf("trait %d references site %d with no mutations", e.Trait, e.Site)
}

// UnknownAlleleError reports a trait entry whose causal allele never appears
// as a derived state at its site. It aborts the whole computation.
type UnknownAlleleError struct {
	Site   treeseq.ID
	Trait  int
	Allele string
}

func (e UnknownAlleleError) Error() string {
	return fmt.Sprintf("trait %d references allele %q absent from site %d", e.Trait, e.Allele, e.Site)
}

// DuplicateEntryError reports two entries for the same (site, trait) pair
// under the allele effects model.
type DuplicateEntryError struct {
	Site  treeseq.ID
	Trait int
}

func (e DuplicateEntryError) Error() string {
	return fmt.Sprintf("trait %d carries multiple effect entries for site %d", e.Trait, e.Site)
}
