package showcase

import (
	"fmt"
	"regexp"
	"strings"
)

// CustomItem is a host-provided item spliced into the flattened list.
// Index is a signed position: non-negative values count from the start,
// negative values from the end (-1 inserts before the last item).
type CustomItem struct {
	Index int
	Item  MediaItem
}

// CatalogOptions controls how a Composition is flattened.
type CatalogOptions struct {
	// CategoryFilter selects categories by id using '*' wildcards and '|'
	// alternation, e.g. "exterior|interior-*". Empty selects all.
	CategoryFilter string
	CustomItems    []CustomItem
	// MaxItemsShown truncates the list; zero means unlimited.
	MaxItemsShown int
}

// ResolvedItem is one entry of the flattened carousel list.
type ResolvedItem struct {
	Item MediaItem
	// CategoryIndex indexes ResolvedCatalog.Categories. Custom items take
	// the category of the item they were inserted before, or of the last
	// item when appended.
	CategoryIndex int
	Custom        bool
}

// CategorySpan describes where a category's items begin in the flat list.
type CategorySpan struct {
	ID    string
	Title string
	Start int // index of the first item, or -1 if truncated away
}

// ResolvedCatalog is the ordered, filtered item list a carousel runs on.
type ResolvedCatalog struct {
	Items      []ResolvedItem
	Categories []CategorySpan
}

// Len returns the number of items.
func (c *ResolvedCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Item returns item i.
func (c *ResolvedCatalog) Item(i int) (MediaItem, error) {
	if i < 0 || i >= c.Len() {
		return MediaItem{}, fmt.Errorf("item %d of %d: %w", i, c.Len(), ErrIndexOutOfRange)
	}
	return c.Items[i].Item, nil
}

// CategoryStart returns the index of the first item of category id.
func (c *ResolvedCatalog) CategoryStart(id string) (int, error) {
	for _, span := range c.Categories {
		if span.ID == id && span.Start >= 0 {
			return span.Start, nil
		}
	}
	return 0, fmt.Errorf("category %q: %w", id, ErrCategoryNotFound)
}

// CategoryAt returns the category of item i, or an empty span when out of
// range.
func (c *ResolvedCatalog) CategoryAt(i int) CategorySpan {
	if i < 0 || i >= c.Len() {
		return CategorySpan{Start: -1}
	}
	ci := c.Items[i].CategoryIndex
	if ci < 0 || ci >= len(c.Categories) {
		return CategorySpan{Start: -1}
	}
	return c.Categories[ci]
}

// CompileCategoryFilter turns a '*'/'|' pattern into a matcher over
// category ids. Each alternative must match the whole id.
func CompileCategoryFilter(pattern string) (func(id string) bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	alts := strings.Split(pattern, "|")
	parts := make([]string, 0, len(alts))
	for _, alt := range alts {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		segs := strings.Split(alt, "*")
		for i, s := range segs {
			segs[i] = regexp.QuoteMeta(s)
		}
		parts = append(parts, strings.Join(segs, ".*"))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("category filter %q: no alternatives", pattern)
	}
	re, err := regexp.Compile("^(?:" + strings.Join(parts, "|") + ")$")
	if err != nil {
		return nil, fmt.Errorf("category filter %q: %w", pattern, err)
	}
	return re.MatchString, nil
}

// ResolveCatalog flattens the composition's categories into one ordered
// list, keeping categories whose id matches the filter, then splices in
// custom items and applies MaxItemsShown. Every custom position is
// resolved once against the filtered list before any insertion, so
// declaring several custom items never shifts the others.
func ResolveCatalog(comp *Composition, opts CatalogOptions) (*ResolvedCatalog, error) {
	if comp == nil {
		return nil, ErrNotLoaded
	}
	match, err := CompileCategoryFilter(opts.CategoryFilter)
	if err != nil {
		return nil, err
	}

	out := &ResolvedCatalog{}
	var flat []ResolvedItem
	for _, cat := range comp.Categories {
		if !match(cat.ID) {
			continue
		}
		ci := len(out.Categories)
		out.Categories = append(out.Categories, CategorySpan{ID: cat.ID, Title: cat.Title, Start: -1})
		for _, item := range cat.Items {
			flat = append(flat, ResolvedItem{Item: item, CategoryIndex: ci})
		}
	}

	positions := make([]int, len(opts.CustomItems))
	for i, ci := range opts.CustomItems {
		positions[i] = InsertPosition(ci.Index, len(flat))
	}

	items := make([]ResolvedItem, 0, len(flat)+len(opts.CustomItems))
	for p := 0; p <= len(flat); p++ {
		for i, ci := range opts.CustomItems {
			if positions[i] != p {
				continue
			}
			cat := -1
			switch {
			case p < len(flat):
				cat = flat[p].CategoryIndex
			case len(flat) > 0:
				cat = flat[len(flat)-1].CategoryIndex
			}
			items = append(items, ResolvedItem{Item: ci.Item, CategoryIndex: cat, Custom: true})
		}
		if p < len(flat) {
			items = append(items, flat[p])
		}
	}

	if opts.MaxItemsShown > 0 && len(items) > opts.MaxItemsShown {
		items = items[:opts.MaxItemsShown]
	}
	for i, it := range items {
		if it.Custom || it.CategoryIndex < 0 {
			continue
		}
		if span := &out.Categories[it.CategoryIndex]; span.Start < 0 {
			span.Start = i
		}
	}
	out.Items = items
	return out, nil
}

// InsertPosition resolves a signed insertion index against a list of n
// items. Negative indices count from the end; the result is clamped to
// [0, n].
func InsertPosition(index, n int) int {
	if index < 0 {
		index += n
	}
	return min(max(index, 0), n)
}
