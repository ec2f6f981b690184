package core

import "traitcore/pkg/domain"

// NewRulesEngine constructs an empty rules engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// defaultRules returns the built-in policy set in registration order.
func defaultRules() []Rule {
	return []Rule{
		GenealogyIntegrityRule(),
		TraitReferenceRule(),
	}
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	for _, rule := range defaultRules() {
		engine.Register(rule)
	}
	return engine
}
