package classifier

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"LabRateImporter/internal/domain"
)

//go:embed rules.yaml
var embeddedRules []byte

var defaultRules = mustLoadRules(embeddedRules)

// Rules is a versioned keyword table. Order of Categories is evaluation order.
type Rules struct {
	Version    int      `yaml:"version"`
	Fallback   Fallback `yaml:"fallback"`
	Categories []Rule   `yaml:"categories"`
}

// Fallback is applied when no keyword matches, and supplies symptoms for
// categories that define none.
type Fallback struct {
	Category domain.Category `yaml:"category"`
	Symptoms []string        `yaml:"symptoms"`
}

// Rule maps a keyword group to its category and symptom list.
type Rule struct {
	Name     domain.Category `yaml:"name"`
	Keywords []string        `yaml:"keywords"`
	Symptoms []string        `yaml:"symptoms"`
}

// DefaultRules returns the built-in table.
func DefaultRules() *Rules {
	return defaultRules
}

// LoadRules decodes and validates a YAML rule table.
func LoadRules(r io.Reader) (*Rules, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rules Rules
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := rules.validate(); err != nil {
		return nil, err
	}
	rules.normalize()
	return &rules, nil
}

// LoadRulesFile reads a rule table from disk.
func LoadRulesFile(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules %s: %w", path, err)
	}
	defer f.Close()

	rules, err := LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

func (r *Rules) validate() error {
	if r.Version <= 0 {
		return errors.New("rules: version must be positive")
	}
	if !r.Fallback.Category.Valid() {
		return fmt.Errorf("rules: unknown fallback category %q", r.Fallback.Category)
	}
	if len(r.Fallback.Symptoms) == 0 {
		return errors.New("rules: fallback symptoms empty")
	}
	if len(r.Categories) == 0 {
		return errors.New("rules: no categories")
	}

	seen := map[domain.Category]bool{r.Fallback.Category: true}
	for i, rule := range r.Categories {
		if !rule.Name.Valid() {
			return fmt.Errorf("rules: category #%d: unknown name %q", i+1, rule.Name)
		}
		if seen[rule.Name] {
			return fmt.Errorf("rules: category %q defined twice", rule.Name)
		}
		seen[rule.Name] = true

		if len(rule.Keywords) == 0 {
			return fmt.Errorf("rules: category %q has no keywords", rule.Name)
		}
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("rules: category %q has an empty keyword", rule.Name)
			}
		}
	}
	return nil
}

// normalize lower-cases keywords so matching only folds the test name.
func (r *Rules) normalize() {
	for i := range r.Categories {
		for j, kw := range r.Categories[i].Keywords {
			r.Categories[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
}

func mustLoadRules(raw []byte) *Rules {
	rules, err := LoadRules(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("classifier: embedded rules: %v", err))
	}
	return rules
}
