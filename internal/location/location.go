// Package location holds the fixed catalog of monitoring points.
//
// Points are configuration, not data: they are compiled in, identified by a
// stable string ID, and never created or mutated at runtime. The catalog
// covers the urban area of Aguachica, Cesar.
package location

import "errors"

// ErrUnknownLocation is returned when a location ID is not in the catalog.
var ErrUnknownLocation = errors.New("location: unknown location id")

// Point is one fixed monitoring point.
type Point struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PrimaryID identifies the city-wide reference point used when a request
// does not name a location.
const PrimaryID = "aguachica_general"

var points = []Point{
	{ID: "aguachica_general", Name: "Aguachica - Vista General", Latitude: 8.312, Longitude: -73.626},
	{ID: "parque_central", Name: "Parque Central", Latitude: 8.310675833008426, Longitude: -73.62363665855918},
	{ID: "universidad", Name: "Universidad Popular del Cesar", Latitude: 8.314789098234467, Longitude: -73.59638568793966},
	{ID: "parque_morrocoy", Name: "Parque Morrocoy", Latitude: 8.310373774726447, Longitude: -73.61670782048647},
	{ID: "patinodromo", Name: "Patinódromo", Latitude: 8.297149888853758, Longitude: -73.62335200184627},
	{ID: "ciudadela_paz", Name: "Ciudadela de la Paz", Latitude: 8.312099985681844, Longitude: -73.63467832511535},
	{ID: "bosque", Name: "Bosque", Latitude: 8.312303609676293, Longitude: -73.61448867800057},
	{ID: "estadio", Name: "Estadio", Latitude: 8.30159931733102, Longitude: -73.622763654179},
}

var byID = func() map[string]Point {
	m := make(map[string]Point, len(points))
	for _, p := range points {
		m[p.ID] = p
	}
	return m
}()

// All returns the catalog in its stable display order. The returned slice is
// a copy; callers may reorder it freely.
func All() []Point {
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

// ByID looks up a point by its stable ID.
func ByID(id string) (Point, error) {
	p, ok := byID[id]
	if !ok {
		return Point{}, ErrUnknownLocation
	}
	return p, nil
}

// Primary returns the city-wide reference point.
func Primary() Point {
	return byID[PrimaryID]
}
