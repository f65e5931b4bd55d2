package citymap

import (
	"math"
	"sort"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/agnivade/levenshtein"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// s2CellLevel determines the granularity of the S2 spatial index used by Nearest.
//
// Level 10 gives cells of roughly 10km x 10km at the equator. Lower levels
// (e.g. 8, ~40km) scan more keys per query, higher levels (e.g. 12, ~2.5km)
// need many more cells to cover the search radius.
const s2CellLevel = 10

// maxNearestDistance is ~100km in radians on the unit sphere.
// Nearest reports no match when the closest key is farther away.
const maxNearestDistance = 0.0157

// earthRadiusKm is the mean Earth radius used to express angles as distances.
const earthRadiusKm = 6371.0088

// maxSuggestDistance caps the edit distance accepted by Suggest.
const maxSuggestDistance = 3

// Geohash precision bounds (characters).
const (
	minGeohashPrecision = 1
	maxGeohashPrecision = 12
)

// Match is a key found in an Index.
type Match struct {
	Key string
	Coordinates
	DistanceKm float64 // distance from the query point; only set by Nearest
}

// City returns the city part of the key.
func (m Match) City() string {
	city, _, _ := splitKey(m.Key)
	return city
}

// State returns the state code part of the key.
func (m Match) State() string {
	_, state, _ := splitKey(m.Key)
	return state
}

// Index is a read-only lookup structure over a Mapping.
// Safe for concurrent use.
type Index struct {
	keys   []string            // sorted
	coords []Coordinates       // parallel to keys
	byName map[string]int      // lowercase key -> position in keys
	cells  map[s2.CellID][]int // S2 cell -> positions in keys
}

// NewIndex builds an Index over m.
func NewIndex(m Mapping) *Index {
	keys := m.SortedKeys()
	ix := &Index{
		keys:   keys,
		coords: make([]Coordinates, len(keys)),
		byName: make(map[string]int, len(keys)),
		cells:  make(map[s2.CellID][]int),
	}
	for i, k := range keys {
		c := m[k]
		ix.coords[i] = c

		// Keys are sorted, so among keys differing only by case the first wins.
		lk := strings.ToLower(k)
		if _, dup := ix.byName[lk]; !dup {
			ix.byName[lk] = i
		}

		ll := s2.LatLngFromDegrees(c.Latitude, c.Longitude)
		if !ll.IsValid() {
			continue
		}
		cell := s2.CellIDFromLatLng(ll).Parent(s2CellLevel)
		ix.cells[cell] = append(ix.cells[cell], i)
	}
	return ix
}

// Len returns the number of keys in the index.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Keys returns the indexed keys in ascending order.
func (ix *Index) Keys() []string {
	return append([]string(nil), ix.keys...)
}

func (ix *Index) match(i int) Match {
	return Match{Key: ix.keys[i], Coordinates: ix.coords[i]}
}

// Lookup finds a key case-insensitively. The state part may be given as a
// full name: "springfield, illinois" finds "Springfield, IL".
func (ix *Index) Lookup(query string) (Match, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Match{}, false
	}
	if i, ok := ix.byName[strings.ToLower(q)]; ok {
		return ix.match(i), true
	}
	city, state, ok := splitKey(q)
	if !ok {
		return Match{}, false
	}
	code := StateCode(state)
	if code == "" {
		return Match{}, false
	}
	if i, ok := ix.byName[strings.ToLower(Key(city, code))]; ok {
		return ix.match(i), true
	}
	return Match{}, false
}

// Suggest returns keys within maxDist edits of query (case-insensitive),
// closest first, at most limit entries (limit <= 0 means no limit).
// maxDist is capped at 3 to bound the cost of scanning every key.
func (ix *Index) Suggest(query string, maxDist, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || maxDist <= 0 {
		return nil
	}
	if maxDist > maxSuggestDistance {
		maxDist = maxSuggestDistance
	}

	type scored struct {
		key  string
		dist int
	}
	var found []scored
	for _, k := range ix.keys {
		d := levenshtein.ComputeDistance(q, strings.ToLower(k))
		if d <= maxDist {
			found = append(found, scored{key: k, dist: d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].key < found[j].key
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.key
	}
	return out
}

// Nearest returns the key closest to the given point, provided it lies within
// ~100km. Every indexed S2 cell that intersects the 100km cap around the point
// is scanned, so the result is exact. Ties are broken by key.
func (ix *Index) Nearest(lat, lng float64) (Match, bool) {
	// Reject invalid float values that could cause undefined behavior
	// in S2 geometry calculations.
	if math.IsNaN(lat) || math.IsNaN(lng) ||
		math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Match{}, false
	}
	queryLL := s2.LatLngFromDegrees(lat, lng)
	if !queryLL.IsValid() {
		return Match{}, false
	}

	best, bestDist := -1, math.Inf(1)
	for _, cell := range nearbyCells(queryLL) {
		for _, i := range ix.cells[cell] {
			c := ix.coords[i]
			dist := float64(queryLL.Distance(s2.LatLngFromDegrees(c.Latitude, c.Longitude)))
			if dist < bestDist || (dist == bestDist && ix.keys[i] < ix.keys[best]) {
				best, bestDist = i, dist
			}
		}
	}
	if best < 0 || bestDist > maxNearestDistance {
		return Match{}, false
	}

	m := ix.match(best)
	m.DistanceKm = bestDist * earthRadiusKm
	return m, true
}

// nearbyCells returns the index-level cells covering every point within
// maxNearestDistance of ll.
func nearbyCells(ll s2.LatLng) []s2.CellID {
	coverer := s2.RegionCoverer{MinLevel: s2CellLevel, MaxLevel: s2CellLevel, MaxCells: 1024}
	return coverer.Covering(s2.CapFromCenterAngle(s2.PointFromLatLng(ll), s1.Angle(maxNearestDistance)))
}

// Geohash encodes a point as a geohash string. precision is clamped to 1..12.
func Geohash(c Coordinates, precision int) string {
	if precision < minGeohashPrecision {
		precision = minGeohashPrecision
	}
	if precision > maxGeohashPrecision {
		precision = maxGeohashPrecision
	}
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}
