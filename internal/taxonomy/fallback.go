package taxonomy

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var (
	fallbackOnce sync.Once
	fallbackData *Taxonomy
)

// Fallback returns the embedded static taxonomy. The returned value is
// shared and must not be modified.
func Fallback() *Taxonomy {
	fallbackOnce.Do(func() {
		tax, err := decodeTaxonomy(fallbackYAML)
		if err != nil {
			panic(fmt.Sprintf("taxonomy: invalid embedded fallback: %v", err))
		}
		fallbackData = tax
	})
	return fallbackData
}

func decodeTaxonomy(data []byte) (*Taxonomy, error) {
	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, err
	}
	return &tax, nil
}

// fallbackGroupFor finds the fallback group with the same slug or, failing
// that, the same name (case-insensitive).
func fallbackGroupFor(g TagGroup) (TagGroup, bool) {
	fb := Fallback()
	if g.Slug != "" {
		for _, candidate := range fb.TagGroups {
			if strings.EqualFold(candidate.Slug, g.Slug) {
				return candidate, true
			}
		}
	}
	if g.Name != "" {
		for _, candidate := range fb.TagGroups {
			if strings.EqualFold(candidate.Name, g.Name) {
				return candidate, true
			}
		}
	}
	return TagGroup{}, false
}
