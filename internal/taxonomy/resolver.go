package taxonomy

import "strings"

// UngroupedName is the display name of the group holding ungrouped tags.
const UngroupedName = "Autres"

// Resolve builds the ordered tag groups to present for contentType.
//
// Remote groups come first in remote order; a remote group with no tags
// borrows the tags of the fallback group with the same slug or name.
// Fallback groups absent from the remote response follow, then an
// "Autres" group built from ungrouped tags. Tags are filtered by the
// content type's category and groups left empty are omitted. A nil remote
// taxonomy resolves to the fallback groups alone.
func Resolve(remote *Taxonomy, contentType ContentType) []TagGroup {
	if remote == nil {
		remote = &Taxonomy{}
	}
	category := contentType.CategorySlug()

	var groups []TagGroup
	seen := make(map[string]bool)

	for _, rg := range remote.TagGroups {
		markSeen(seen, rg)

		tags := rg.Tags
		if len(tags) == 0 {
			if fb, ok := fallbackGroupFor(rg); ok {
				tags = fb.Tags
				markSeen(seen, fb)
			}
		}

		if filtered := filterTags(tags, category); len(filtered) > 0 {
			groups = append(groups, TagGroup{
				ID:    rg.ID,
				Name:  rg.Name,
				Slug:  rg.Slug,
				Order: rg.Order,
				Tags:  filtered,
			})
		}
	}

	for _, fb := range Fallback().TagGroups {
		if seen[strings.ToLower(fb.Slug)] {
			continue
		}
		if filtered := filterTags(fb.Tags, category); len(filtered) > 0 {
			groups = append(groups, TagGroup{
				ID:    fb.ID,
				Name:  fb.Name,
				Slug:  fb.Slug,
				Order: fb.Order,
				Tags:  filtered,
			})
		}
	}

	if filtered := filterTags(remote.UngroupedTags, category); len(filtered) > 0 {
		groups = append(groups, TagGroup{Name: UngroupedName, Tags: filtered})
	}

	return groups
}

func markSeen(seen map[string]bool, g TagGroup) {
	if g.Slug != "" {
		seen[strings.ToLower(g.Slug)] = true
	}
}

// filterTags returns a fresh slice of the tags applying to category.
func filterTags(tags []Tag, category string) []Tag {
	var out []Tag
	for _, t := range tags {
		if t.AppliesTo(category) {
			out = append(out, t)
		}
	}
	return out
}

// FindTagID returns the id of the first tag whose name or slug equals
// nameOrSlug, ignoring case, scanning groups in order.
func FindTagID(groups []TagGroup, nameOrSlug string) (string, bool) {
	if nameOrSlug == "" {
		return "", false
	}
	for _, g := range groups {
		for _, t := range g.Tags {
			if strings.EqualFold(t.Name, nameOrSlug) || strings.EqualFold(t.Slug, nameOrSlug) {
				return t.ID, true
			}
		}
	}
	return "", false
}

// FindCategoryID returns the id of the tracker category for contentType,
// looking at root categories and their direct children.
func FindCategoryID(tax *Taxonomy, contentType ContentType) (string, bool) {
	if tax == nil {
		return "", false
	}
	slug := contentType.CategorySlug()
	for _, root := range tax.Categories {
		for _, child := range root.Children {
			if strings.EqualFold(child.Slug, slug) {
				return child.ID, true
			}
		}
	}
	for _, root := range tax.Categories {
		if strings.EqualFold(root.Slug, slug) {
			return root.ID, true
		}
	}
	return "", false
}
