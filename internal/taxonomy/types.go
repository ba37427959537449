// Package taxonomy resolves the tracker's tag catalog for a content type,
// merging the remote /meta response with an embedded fallback dataset.
package taxonomy

import "strings"

// ContentType is the kind of title being released.
type ContentType string

const (
	ContentMovie ContentType = "movie"
	ContentTV    ContentType = "tv"
)

// CategorySlug returns the tracker category slug tags are filtered on.
func (c ContentType) CategorySlug() string {
	if c == ContentTV {
		return "series"
	}
	return "films"
}

// Valid reports whether c is a known content type.
func (c ContentType) Valid() bool {
	return c == ContentMovie || c == ContentTV
}

// ParseContentType maps user input to a ContentType. Unknown values
// default to movie, matching the tracker's default category.
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tv", "series", "serie", "show":
		return ContentTV
	default:
		return ContentMovie
	}
}

// Tag is a single selectable label. Categories lists the category slugs the
// tag applies to; an empty list means every category.
type Tag struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Slug       string   `json:"slug" yaml:"slug"`
	Categories []string `json:"categories,omitempty" yaml:"categories"`
}

// AppliesTo reports whether the tag is usable for the given category slug.
func (t Tag) AppliesTo(categorySlug string) bool {
	if len(t.Categories) == 0 {
		return true
	}
	for _, c := range t.Categories {
		if strings.EqualFold(c, categorySlug) {
			return true
		}
	}
	return false
}

// TagGroup is an ordered collection of tags shown together in the picker.
type TagGroup struct {
	ID    string `json:"id,omitempty" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Slug  string `json:"slug,omitempty" yaml:"slug"`
	Order int    `json:"order,omitempty" yaml:"order"`
	Tags  []Tag  `json:"tags" yaml:"tags"`
}

// Category is a node of the tracker's category tree.
type Category struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Slug     string     `json:"slug" yaml:"slug"`
	Children []Category `json:"children,omitempty" yaml:"children"`
}

// Taxonomy is the tracker's full tag catalog as returned by /api/external/meta.
type Taxonomy struct {
	Categories    []Category `json:"categories" yaml:"categories"`
	TagGroups     []TagGroup `json:"tagGroups" yaml:"tag_groups"`
	UngroupedTags []Tag      `json:"ungroupedTags" yaml:"ungrouped_tags"`
}
