// Package skills detects taxonomy skill tags in free text and maps them
// onto coarse industry domains.
package skills

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed taxonomy.json
var taxonomyJSON []byte

//go:embed taxonomy_schema.json
var taxonomySchemaJSON []byte

// Taxonomy is the fixed set of skill tags with their surface variants.
type Taxonomy struct {
	Version int     `json:"version"`
	Skills  []Skill `json:"skills"`
}

// Skill is one taxonomy entry.
type Skill struct {
	Tag      string   `json:"tag"`
	Variants []string `json:"variants"`
	Domain   string   `json:"domain"`
}

// TaxonomyError reports a malformed taxonomy document.
type TaxonomyError struct {
	Message string
	Cause   error
}

func (e *TaxonomyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid skill taxonomy: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid skill taxonomy: %s", e.Message)
}

func (e *TaxonomyError) Unwrap() error { return e.Cause }

// LoadTaxonomy parses and schema-validates a taxonomy document.
func LoadTaxonomy(data []byte) (*Taxonomy, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(taxonomySchemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, &TaxonomyError{Message: "schema validation failed", Cause: err}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, &TaxonomyError{Message: strings.Join(msgs, "; ")}
	}

	var tax Taxonomy
	if err := json.Unmarshal(data, &tax); err != nil {
		return nil, &TaxonomyError{Message: "parsing taxonomy JSON", Cause: err}
	}

	seen := make(map[string]struct{}, len(tax.Skills))
	for _, s := range tax.Skills {
		if _, dup := seen[s.Tag]; dup {
			return nil, &TaxonomyError{Message: fmt.Sprintf("duplicate tag %q", s.Tag)}
		}
		seen[s.Tag] = struct{}{}
	}

	return &tax, nil
}

// DefaultTaxonomy loads the embedded taxonomy shipped with the binary.
func DefaultTaxonomy() (*Taxonomy, error) {
	return LoadTaxonomy(taxonomyJSON)
}

// Canonical maps a free-form skill name onto its taxonomy tag. Unknown
// names are lowercased and trimmed so caller-supplied filters still compare
// consistently.
func (t *Taxonomy) Canonical(name string) string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return ""
	}
	for _, s := range t.Skills {
		if s.Tag == needle {
			return s.Tag
		}
		for _, v := range s.Variants {
			if strings.ToLower(v) == needle {
				return s.Tag
			}
		}
	}
	return needle
}

// DomainsFor returns the distinct industry domains covered by a tag set,
// in taxonomy order.
func (t *Taxonomy) DomainsFor(tags []string) []string {
	want := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		want[tag] = struct{}{}
	}

	var domains []string
	seen := make(map[string]struct{})
	for _, s := range t.Skills {
		if _, ok := want[s.Tag]; !ok {
			continue
		}
		if _, dup := seen[s.Domain]; dup {
			continue
		}
		seen[s.Domain] = struct{}{}
		domains = append(domains, s.Domain)
	}
	return domains
}
