package finance

import (
	"sync"

	"github.com/biglong-lab/woyu-money-sub010/engine"
)

// =============================================================================
// CATEGORY REGISTRY - Display metadata for category tags
// =============================================================================

// CategoryInfo carries display metadata for a category tag. Elevated
// categories are the ones the scorer treats specially; everything else is
// cosmetic.
type CategoryInfo struct {
	Tag      engine.CategoryType
	Label    string
	Elevated bool
}

var categoryInfos = map[engine.CategoryType]CategoryInfo{
	engine.CategoryRent:      {Tag: engine.CategoryRent, Label: "租金", Elevated: true},
	engine.CategoryInsurance: {Tag: engine.CategoryInsurance, Label: "勞健保", Elevated: true},
	engine.CategoryUtility:   {Tag: engine.CategoryUtility, Label: "水電費"},
	engine.CategoryLoan:      {Tag: engine.CategoryLoan, Label: "貸款"},
	engine.CategoryPayroll:   {Tag: engine.CategoryPayroll, Label: "薪資"},
	engine.CategoryOther:     {Tag: engine.CategoryOther, Label: "其他"},
}

// LookupCategory returns metadata for a tag. Unknown tags get an "other"
// style entry with the raw tag as its label, never an error.
func LookupCategory(tag engine.CategoryType) CategoryInfo {
	if info, ok := categoryInfos[tag]; ok {
		return info
	}
	return CategoryInfo{Tag: tag, Label: string(tag)}
}

// Categories returns all registered category tags for UI pickers.
func Categories() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(categoryInfos))
	for _, tag := range []engine.CategoryType{
		engine.CategoryRent,
		engine.CategoryInsurance,
		engine.CategoryUtility,
		engine.CategoryLoan,
		engine.CategoryPayroll,
		engine.CategoryOther,
	} {
		infos = append(infos, categoryInfos[tag])
	}
	return infos
}

// =============================================================================
// CATEGORY CACHE - Lookup caching for the storage layer
// =============================================================================
// Any category caching lives here in the domain/storage layer; the scoring
// engine stays a pure function of its arguments.

// CategoryCache memoizes category lookups that required storage access
// (e.g., user-defined labels). Safe for concurrent use.
type CategoryCache struct {
	mu      sync.RWMutex
	entries map[engine.CategoryType]CategoryInfo
}

func NewCategoryCache() *CategoryCache {
	return &CategoryCache{entries: make(map[engine.CategoryType]CategoryInfo)}
}

// Get returns a cached entry, falling back to the static registry.
func (c *CategoryCache) Get(tag engine.CategoryType) CategoryInfo {
	c.mu.RLock()
	info, ok := c.entries[tag]
	c.mu.RUnlock()
	if ok {
		return info
	}
	return LookupCategory(tag)
}

// Put stores a user-defined category entry.
func (c *CategoryCache) Put(info CategoryInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[info.Tag] = info
}
