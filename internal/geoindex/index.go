// Package geoindex keeps an in-memory R-tree over persisted places so nearby
// lookups never touch the provider or the database.
package geoindex

import (
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"playfinder/internal/place/models"
	id "playfinder/pkg/domain"
	"playfinder/pkg/geo"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50

	// Point entries get a tiny rect around them; roughly 10 m at the equator.
	pointTolerance = 0.0001

	earthRadiusMeters = 6371000.0
	degreesPerRadian  = 180.0 / math.Pi

	// Keeps the longitude window finite near the poles.
	minCosLat = 0.01
)

type entry struct {
	place models.Place
	rect  *rtreego.Rect
}

func (e *entry) Bounds() *rtreego.Rect { return e.rect }

// Index is a thread-safe R-tree over places with known coordinates. Places
// carrying the unset-location sentinel are never indexed.
type Index struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[id.PlaceID]*entry
}

func New() *Index {
	return &Index{
		tree:    rtreego.NewTree(dimensions, minChildren, maxChildren),
		entries: make(map[id.PlaceID]*entry),
	}
}

// Upsert indexes a place, replacing any previous entry for the same id.
// Places without usable coordinates are skipped (and a stale entry removed).
func (ix *Index) Upsert(place models.Place) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.entries[place.ID]; ok {
		ix.tree.Delete(old)
		delete(ix.entries, place.ID)
	}
	coords := place.Location.LatLng()
	if place.Location.IsUnset() || !coords.Valid() {
		return
	}

	point := rtreego.Point{coords.Lat, coords.Lng}
	e := &entry{place: place, rect: point.ToRect(pointTolerance)}
	ix.tree.Insert(e)
	ix.entries[place.ID] = e
}

// Remove drops a place from the index. Unknown ids are a no-op.
func (ix *Index) Remove(placeID id.PlaceID) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if e, ok := ix.entries[placeID]; ok {
		ix.tree.Delete(e)
		delete(ix.entries, placeID)
	}
}

// Warm bulk-loads the index, typically from the store at boot.
func (ix *Index) Warm(places []models.Place) {
	for _, place := range places {
		ix.Upsert(place)
	}
}

// Within returns the places inside radiusMeters of center, nearest first. The
// R-tree prunes with a bounding box; exact haversine distance decides
// membership and order.
func (ix *Index) Within(center geo.Coordinates, radiusMeters int) []models.Place {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	// A degree of longitude shrinks with cos(lat), so the box must widen
	// east-west away from the equator or it prunes in-radius places. The
	// exact distance filter below trims the over-approximation.
	degLat := (float64(radiusMeters) / earthRadiusMeters) * degreesPerRadian
	cosLat := math.Cos(center.Lat / degreesPerRadian)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	degLng := degLat / cosLat
	bounds, err := rtreego.NewRect(
		rtreego.Point{center.Lat - degLat, center.Lng - degLng},
		[]float64{2 * degLat, 2 * degLng},
	)
	if err != nil {
		return nil
	}

	type hit struct {
		place    models.Place
		distance float64
	}
	var hits []hit
	for _, spatial := range ix.tree.SearchIntersect(bounds) {
		e := spatial.(*entry)
		d := geo.DistanceMeters(center, e.place.Location.LatLng())
		if d <= float64(radiusMeters) {
			hits = append(hits, hit{place: e.place, distance: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	places := make([]models.Place, len(hits))
	for i, h := range hits {
		places[i] = h.place
	}
	return places
}

// Nearest returns up to k places closest to center, nearest first.
func (ix *Index) Nearest(center geo.Coordinates, k int) []models.Place {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.NearestNeighbors(k, rtreego.Point{center.Lat, center.Lng})
	places := make([]models.Place, 0, len(results))
	for _, spatial := range results {
		if spatial == nil {
			continue
		}
		places = append(places, spatial.(*entry).place)
	}
	return places
}

// Len reports the number of indexed places.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}
