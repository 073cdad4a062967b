package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aireclaro/aireclaro/internal/api/models"
	"github.com/aireclaro/aireclaro/internal/api/response"
	"github.com/aireclaro/aireclaro/internal/location"
)

// LocationsHandler serves the static monitoring point catalog.
type LocationsHandler struct{}

// NewLocationsHandler creates a new LocationsHandler.
func NewLocationsHandler() *LocationsHandler {
	return &LocationsHandler{}
}

// ListLocations handles GET /v1/locations - the full catalog, primary first.
func (h *LocationsHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	points := location.All()
	out := make([]models.LocationResponse, 0, len(points))
	for _, p := range points {
		out = append(out, toLocationResponse(p))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetLocation handles GET /v1/locations/{locationId} - one catalog entry.
func (h *LocationsHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")
	p, err := location.ByID(locationID)
	if err != nil {
		response.NotFound(w, r, "unknown location: "+locationID)
		return
	}
	response.JSON(w, r, http.StatusOK, toLocationResponse(p))
}

func toLocationResponse(p location.Point) models.LocationResponse {
	return models.LocationResponse{
		ID:        p.ID,
		Name:      p.Name,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
	}
}
