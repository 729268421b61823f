/*
registry.go - Category registration and lookup

PURPOSE:
  Provides a registry for track packages to register their volume
  categories. Input rows arrive as plain strings; the registry turns them
  back into the track's concrete Category while the generic package stays
  track-agnostic.

HOW IT WORKS:
  1. Track packages define their Category implementations
  2. Track packages register them on init()
  3. Sheets and the projector use the registry to parse input rows

USAGE:
  // In mobile/types.go
  func init() {
      generic.RegisterCategory(CategoryTied, generic.CategorySpec{})
  }

  // In the projector
  c, spec, err := generic.LookupCategory("mobile", "TIED")

SEE ALSO:
  - types.go: Category interface definition
  - sheet.go: Uses CategorySpec to validate cluster keys
*/
package generic

import (
	"sort"
	"sync"
)

// =============================================================================
// CATEGORY REGISTRY
// =============================================================================

// CategorySpec describes the shape of rows for one category.
type CategorySpec struct {
	// Clusters lists the allowed cluster sub-keys. Empty means the category
	// takes no sub-key at all.
	Clusters []string
}

// AllowsCluster reports whether a row with the given cluster key is well formed.
func (s CategorySpec) AllowsCluster(cluster string) bool {
	if len(s.Clusters) == 0 {
		return cluster == ""
	}
	for _, c := range s.Clusters {
		if c == cluster {
			return true
		}
	}
	return false
}

type registeredCategory struct {
	category Category
	spec     CategorySpec
}

var (
	categoryRegistry = make(map[TrackID]map[string]registeredCategory)
	registryMu       sync.RWMutex
)

// RegisterCategory adds a category to the global registry.
// Call this from track package init() functions.
func RegisterCategory(c Category, spec CategorySpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	byID, ok := categoryRegistry[c.CategoryTrack()]
	if !ok {
		byID = make(map[string]registeredCategory)
		categoryRegistry[c.CategoryTrack()] = byID
	}
	byID[c.CategoryID()] = registeredCategory{category: c, spec: spec}
}

// LookupCategory finds a registered category by track and code.
func LookupCategory(track TrackID, id string) (Category, CategorySpec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	rc, ok := categoryRegistry[track][id]
	if !ok {
		return nil, CategorySpec{}, &UnknownCategoryError{Track: track, Category: id}
	}
	return rc.category, rc.spec, nil
}

// ListCategories returns the registered categories of a track sorted by code.
func ListCategories(track TrackID) []Category {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Category, 0, len(categoryRegistry[track]))
	for _, rc := range categoryRegistry[track] {
		result = append(result, rc.category)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CategoryID() < result[j].CategoryID()
	})
	return result
}

// ListTracks returns every track with at least one registered category.
func ListTracks() []TrackID {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]TrackID, 0, len(categoryRegistry))
	for t := range categoryRegistry {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
