package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aireclaro/aireclaro/internal/aggregate"
	"github.com/aireclaro/aireclaro/internal/analytics"
	"github.com/aireclaro/aireclaro/internal/anomaly"
	"github.com/aireclaro/aireclaro/internal/api/models"
	"github.com/aireclaro/aireclaro/internal/api/response"
	"github.com/aireclaro/aireclaro/internal/aqi"
	"github.com/aireclaro/aireclaro/internal/location"
	"github.com/aireclaro/aireclaro/internal/reading"
	"github.com/aireclaro/aireclaro/internal/stats"
)

// AnalyticsHandler handles the report and trend endpoints.
type AnalyticsHandler struct {
	service *analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// writeAnalyticsError maps service errors onto Problem responses.
func writeAnalyticsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, location.ErrUnknownLocation):
		response.NotFound(w, r, "unknown location: "+chi.URLParam(r, "locationId"))
	case errors.Is(err, analytics.ErrInsufficientData):
		response.InsufficientData(w, r, "no readings available for the requested window")
	default:
		response.InternalError(w, r, "failed to compute report")
	}
}

// daysParam parses the optional ?days= query parameter. Zero means "use the
// endpoint's default"; a non-numeric or non-positive value is rejected.
func daysParam(r *http.Request) (int, *models.FieldError) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0, &models.FieldError{Field: "days", Message: "must be a positive integer"}
	}
	return days, nil
}

// GetCurrent handles GET /v1/locations/{locationId}/current.
func (h *AnalyticsHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	current, err := h.service.GetCurrent(r.Context(), locationID)
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CurrentResponse{
		Reading:  toReadingResponse(current.Reading),
		Category: toCategoryResponse(current.Summary.Category),
		Dominant: string(current.Summary.Dominant),
	})
}

// GetMonthlyReport handles GET /v1/locations/{locationId}/monthly.
func (h *AnalyticsHandler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	months, err := h.service.MonthlyReport(r.Context(), locationID)
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}

	out := models.MonthlyReportResponse{
		LocationID: locationID,
		Months:     make([]models.MonthlyStatsResponse, 0, len(months)),
	}
	for _, m := range months {
		out.Months = append(out.Months, toMonthlyStatsResponse(m))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetHourlyTrends handles GET /v1/analytics/trends/hourly - the city-wide
// series over the shifted observation day.
func (h *AnalyticsHandler) GetHourlyTrends(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.HourlyTrends(r.Context())
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}

	labels := series.HourLabels()
	out := models.TrendsResponse{
		AnchorHour: series.AnchorHour,
		Hours:      labels[:],
		Series:     make(map[string][]*float64, 4),
	}
	for _, p := range reading.Pollutants() {
		values := series.Values(p)
		out.Series[string(p)] = values[:]
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetAnomalies handles GET /v1/locations/{locationId}/anomalies?days=N&limit=M.
// limit keeps only the most recent M events; dashboards show the tail.
func (h *AnalyticsHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	days, fieldErr := daysParam(r)
	if fieldErr != nil {
		response.BadRequest(w, r, "invalid query parameter", []models.FieldError{*fieldErr})
		return
	}
	if days == 0 {
		days = 1
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(w, r, "invalid query parameter", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer"},
			})
			return
		}
		limit = n
	}

	events, err := h.service.Anomalies(r.Context(), locationID, days)
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}
	events = anomaly.LastN(events, limit)

	out := models.AnomaliesResponse{
		LocationID: locationID,
		Days:       days,
		Events:     make([]models.AnomalyResponse, 0, len(events)),
	}
	for _, e := range events {
		out.Events = append(out.Events, toAnomalyResponse(e))
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetDailySummary handles GET /v1/locations/{locationId}/summary - yesterday's
// advisory for the location.
func (h *AnalyticsHandler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	summary, err := h.service.DailySummary(r.Context(), locationID)
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.SummaryResponse{
		LocationID: locationID,
		Category:   toCategoryResponse(summary.Category),
		Dominant:   string(summary.Dominant),
	})
}

// GetAQIDistribution handles GET /v1/locations/{locationId}/distribution?days=N.
func (h *AnalyticsHandler) GetAQIDistribution(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	days, fieldErr := daysParam(r)
	if fieldErr != nil {
		response.BadRequest(w, r, "invalid query parameter", []models.FieldError{*fieldErr})
		return
	}
	if days == 0 {
		days = 7
	}

	counts, err := h.service.AQIDistribution(r.Context(), locationID, days)
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}

	out := models.DistributionResponse{
		LocationID: locationID,
		Days:       days,
		Buckets:    make([]models.DistributionBucketResponse, 0, len(counts)),
	}
	for i, count := range counts {
		level := i + 1
		out.Buckets = append(out.Buckets, models.DistributionBucketResponse{
			Level: level,
			Label: aqi.Classify(level).Label,
			Count: count,
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// ExportReadings handles GET /v1/locations/{locationId}/export?days=N - raw
// readings as CSV. Absent values render as empty cells.
func (h *AnalyticsHandler) ExportReadings(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "locationId")

	days, fieldErr := daysParam(r)
	if fieldErr != nil {
		response.BadRequest(w, r, "invalid query parameter", []models.FieldError{*fieldErr})
		return
	}
	if days == 0 {
		days = 30
	}

	readings, err := h.service.Export(r.Context(), locationID, days)
	if err != nil {
		writeAnalyticsError(w, r, err)
		return
	}

	zone := h.service.Zone()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_readings.csv"`, locationID))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"location_id", "timestamp", "pm2_5", "pm10", "o3", "no2", "aqi"})
	for _, rd := range readings {
		_ = cw.Write([]string{
			rd.LocationID,
			rd.Timestamp.In(zone).Format(time.RFC3339),
			csvFloat(rd.PM25),
			csvFloat(rd.PM10),
			csvFloat(rd.O3),
			csvFloat(rd.NO2),
			csvInt(rd.AQI),
		})
	}
	cw.Flush()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func toReadingResponse(r reading.Reading) models.ReadingResponse {
	return models.ReadingResponse{
		LocationID: r.LocationID,
		Timestamp:  models.Timestamp(r.Timestamp),
		PM25:       r.PM25,
		PM10:       r.PM10,
		O3:         r.O3,
		NO2:        r.NO2,
		AQI:        r.AQI,
	}
}

func toCategoryResponse(c *aqi.Category) *models.CategoryResponse {
	if c == nil {
		return nil
	}
	return &models.CategoryResponse{
		Level:    c.Level,
		Label:    c.Label,
		Color:    c.Color,
		Advisory: c.Advisory,
		Tips:     c.Tips,
	}
}

func toAnomalyResponse(e anomaly.Event) models.AnomalyResponse {
	return models.AnomalyResponse{
		Timestamp:   models.Timestamp(e.Timestamp),
		Pollutant:   string(e.Pollutant),
		Kind:        string(e.Kind),
		Value:       e.Value,
		Delta:       e.Delta,
		Description: e.Description,
	}
}

func toMonthlyStatsResponse(m aggregate.MonthlyStats) models.MonthlyStatsResponse {
	return models.MonthlyStatsResponse{
		Month: m.Month.String(),
		Stats: map[string]models.PollutantSummaryResponse{
			string(reading.PollutantPM25): toPollutantSummary(m.PM25),
			string(reading.PollutantPM10): toPollutantSummary(m.PM10),
			string(reading.PollutantO3):   toPollutantSummary(m.O3),
			string(reading.PollutantNO2):  toPollutantSummary(m.NO2),
		},
		MeanAQI: m.MeanAQI,
		Samples: m.Samples,
		Partial: m.Partial,
	}
}

func toPollutantSummary(s stats.Summary) models.PollutantSummaryResponse {
	if !s.HasData() {
		return models.PollutantSummaryResponse{}
	}
	return models.PollutantSummaryResponse{
		Min:    &s.Min,
		Q1:     &s.Q1,
		Median: &s.Median,
		Q3:     &s.Q3,
		Max:    &s.Max,
		N:      s.N,
	}
}
