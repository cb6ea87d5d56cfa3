// Package classifier derives category, symptoms and description for rate list
// entries from their names.
package classifier

import (
	"strings"

	"github.com/google/uuid"

	"LabRateImporter/internal/domain"
)

// Classifier applies a rule table. It holds no mutable state.
type Classifier struct {
	rules *Rules
}

// New returns a classifier for rules; nil selects the built-in table.
func New(rules *Rules) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Categorize returns the category of the first rule with a keyword contained
// in the lower-cased name, or the fallback category.
func (c *Classifier) Categorize(name string) domain.Category {
	lower := strings.ToLower(name)
	for _, rule := range c.rules.Categories {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return c.rules.Fallback.Category
}

// Symptoms returns a copy of the symptom list for category.
func (c *Classifier) Symptoms(category domain.Category) []string {
	list := c.rules.Fallback.Symptoms
	for _, rule := range c.rules.Categories {
		if rule.Name == category && len(rule.Symptoms) > 0 {
			list = rule.Symptoms
			break
		}
	}
	return append([]string(nil), list...)
}

// Classify builds the stored form of an entry under a fresh ID.
func (c *Classifier) Classify(entry domain.TestEntry) domain.CatalogTest {
	category := c.Categorize(entry.Name)
	return domain.CatalogTest{
		ID:                  uuid.New(),
		Name:                entry.Name,
		Description:         domain.Describe(entry),
		Price:               entry.Price,
		Category:            category,
		Symptoms:            c.Symptoms(category),
		SampleType:          entry.SampleType,
		PreparationRequired: false,
		ReportTime:          domain.DefaultReportTime,
		HomeCollection:      true,
	}
}

// ClassifyAll classifies entries preserving order.
func (c *Classifier) ClassifyAll(entries []domain.TestEntry) []domain.CatalogTest {
	out := make([]domain.CatalogTest, 0, len(entries))
	for _, entry := range entries {
		out = append(out, c.Classify(entry))
	}
	return out
}

// Version reports the rule table version in use.
func (c *Classifier) Version() int {
	return c.rules.Version
}
