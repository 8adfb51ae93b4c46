// Package search orchestrates the playground search pipeline: resolve
// coordinates, consult the result cache, query the provider, normalize, and
// hand results off for persistence.
package search

import (
	"fmt"
	"strings"

	"playfinder/pkg/geo"
)

// Coordinates in cache keys are rounded so that nearby requests collapse onto
// the same entry. Three decimals is roughly a 110 m grid.
const keyCoordDecimals = 3

// TextKey builds the cache key for a free-text search. Keys are
// case-insensitive and whitespace-normalized so trivially different spellings
// of the same query share one entry.
func TextKey(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return "text:" + normalized
}

// RegionKey builds the cache key for a coordinate+radius search.
func RegionKey(coords geo.Coordinates, radiusMeters int) string {
	rounded := coords.Round(keyCoordDecimals)
	return fmt.Sprintf("region:%s:%d", rounded.String(), radiusMeters)
}
