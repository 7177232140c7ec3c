package rules

import (
	"log"

	"github.com/seamcheck/seamcheck/internal/contract"
	"github.com/seamcheck/seamcheck/internal/normalize"
)

// Checker runs every rule over a contract and writes the aggregated
// mismatches and severity back onto it. Rules themselves never mutate the
// contract; the checker owns the write-back.
type Checker struct {
	rules []Rule
	norm  *normalize.Normalizer
}

// NewChecker returns a Checker with the default rule set, sharing the
// given per-run normalizer.
func NewChecker(norm *normalize.Normalizer) *Checker {
	return &Checker{rules: DefaultRules(), norm: norm}
}

// NewCheckerWithRules allows a custom rule set, mainly for tests.
func NewCheckerWithRules(norm *normalize.Normalizer, rules []Rule) *Checker {
	return &Checker{rules: rules, norm: norm}
}

// Check evaluates all rules against ct. A normalization failure on either
// side leaves that side nil: schema-diffing rules go silent and the
// contract degrades to "unverified" instead of aborting the run.
func (c *Checker) Check(ct *contract.Contract) {
	in := Input{Contract: ct}

	src, err := c.norm.Normalize(ct.FromSchema)
	if err != nil {
		log.Printf("contract %s->%s: source schema %q not normalizable: %v",
			ct.FromLink, ct.ToLink, ct.FromSchema.Name, err)
	} else {
		in.Source = src
	}

	tgt, err := c.norm.Normalize(ct.ToSchema)
	if err != nil {
		log.Printf("contract %s->%s: target schema %q not normalizable: %v",
			ct.FromLink, ct.ToLink, ct.ToSchema.Name, err)
	} else {
		in.Target = tgt
	}

	var mismatches []contract.Mismatch
	for _, r := range c.rules {
		mismatches = append(mismatches, r.Apply(in)...)
	}

	ct.Mismatches = mismatches
	ct.Severity = aggregate(mismatches)
}

// CheckChain runs Check over every contract of the chain in order.
func (c *Checker) CheckChain(chain *contract.DataChain) {
	for i := range chain.Contracts {
		c.Check(&chain.Contracts[i])
	}
}

// aggregate maps a mismatch list to the contract verdict: critical when
// any type mismatch is present, warning when anything at all is present,
// info otherwise.
func aggregate(mismatches []contract.Mismatch) contract.Severity {
	if len(mismatches) == 0 {
		return contract.SeverityInfo
	}
	for _, m := range mismatches {
		if m.Kind == contract.TypeMismatch {
			return contract.SeverityCritical
		}
	}
	return contract.SeverityWarning
}
