package cards

import "strings"

// Group is a splay group: a secondary narrowing of a category queue by one
// metadata attribute.
type Group struct {
	ID    string
	Name  string
	Attr  string
	Value string // empty for the catch-all group
	Count int
}

// Match reports whether c belongs to the group.
func (g Group) Match(c Card) bool {
	v := strings.TrimSpace(c.Metadata.Attrs[g.Attr])
	return v == g.Value
}

// Predicate adapts Match for Store.Query.
func (g Group) Predicate() Predicate { return g.Match }

// GroupAttr is the metadata attribute that splays a category.
func GroupAttr(c Category) string {
	switch c {
	case CategoryCaregiver:
		return "kid"
	case CategoryTransactionalLeader:
		return "sender"
	case CategorySalesHunter:
		return "company"
	case CategoryProjectCoordinator:
		return "project"
	case CategoryEnterpriseInnovator:
		return "topic"
	case CategoryDealStacker:
		return "store"
	case CategoryStatusSeeker:
		return "provider"
	case CategoryIdentityManager:
		return "service"
	}
	return ""
}

// GroupsFor builds the splay groups of category from its pending cards, in
// order of first appearance, with the catch-all group last.
func GroupsFor(category Category, pending []Card) []Group {
	attr := GroupAttr(category)
	if attr == "" {
		return nil
	}
	var groups []Group
	pos := map[string]int{}
	other := Group{ID: attr + ":", Name: "Other", Attr: attr}
	for _, c := range pending {
		if c.Category != category {
			continue
		}
		v := strings.TrimSpace(c.Metadata.Attrs[attr])
		if v == "" {
			other.Count++
			continue
		}
		if i, ok := pos[v]; ok {
			groups[i].Count++
			continue
		}
		pos[v] = len(groups)
		groups = append(groups, Group{ID: attr + ":" + v, Name: v, Attr: attr, Value: v, Count: 1})
	}
	if other.Count > 0 {
		groups = append(groups, other)
	}
	return groups
}
