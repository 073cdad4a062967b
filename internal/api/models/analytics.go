package models

// LocationResponse is one monitoring point from the catalog.
type LocationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CategoryResponse is an AQI category with its advisory payload.
type CategoryResponse struct {
	Level    int      `json:"level"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Advisory string   `json:"advisory"`
	Tips     []string `json:"tips"`
}

// ReadingResponse is one canonical reading. Absent fields serialize as null,
// never as zero.
type ReadingResponse struct {
	LocationID string    `json:"locationId"`
	Timestamp  Timestamp `json:"timestamp"`
	PM25       *float64  `json:"pm2_5"`
	PM10       *float64  `json:"pm10"`
	O3         *float64  `json:"o3"`
	NO2        *float64  `json:"no2"`
	AQI        *int      `json:"aqi"`
}

// CurrentResponse is the latest reading of a location, classified.
type CurrentResponse struct {
	Reading  ReadingResponse   `json:"reading"`
	Category *CategoryResponse `json:"category"`
	Dominant string            `json:"dominantPollutant"`
}

// SummaryResponse summarizes the previous zone-local day for a location.
type SummaryResponse struct {
	LocationID string            `json:"locationId"`
	Category   *CategoryResponse `json:"category"`
	Dominant   string            `json:"dominantPollutant"`
}

// PollutantSummaryResponse is a five-number summary for one pollutant.
// All values are null when the bucket holds no data for the pollutant.
type PollutantSummaryResponse struct {
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"q1"`
	Median *float64 `json:"median"`
	Q3     *float64 `json:"q3"`
	Max    *float64 `json:"max"`
	N      int      `json:"n"`
}

// MonthlyStatsResponse is one calendar-month bucket of the monthly report.
type MonthlyStatsResponse struct {
	Month   string                              `json:"month"`
	Stats   map[string]PollutantSummaryResponse `json:"stats"`
	MeanAQI *float64                            `json:"meanAqi"`
	Samples int                                 `json:"samples"`
	Partial bool                                `json:"partial,omitempty"`
}

// MonthlyReportResponse is the monthly report of one location.
type MonthlyReportResponse struct {
	LocationID string                 `json:"locationId"`
	Months     []MonthlyStatsResponse `json:"months"`
}

// TrendsResponse is the city-wide hourly series over the shifted day.
// Each series holds 24 slots starting at the anchor hour; empty slots are
// null.
type TrendsResponse struct {
	AnchorHour int                   `json:"anchorHour"`
	Hours      []string              `json:"hours"`
	Series     map[string][]*float64 `json:"series"`
}

// AnomalyResponse is one detected anomaly event.
type AnomalyResponse struct {
	Timestamp   Timestamp `json:"timestamp"`
	Pollutant   string    `json:"pollutant"`
	Kind        string    `json:"kind"`
	Value       float64   `json:"value"`
	Delta       float64   `json:"delta,omitempty"`
	Description string    `json:"description"`
}

// AnomaliesResponse is the anomaly feed of one location.
type AnomaliesResponse struct {
	LocationID string            `json:"locationId"`
	Days       int               `json:"days"`
	Events     []AnomalyResponse `json:"events"`
}

// DistributionBucketResponse is one AQI category count.
type DistributionBucketResponse struct {
	Level int    `json:"level"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DistributionResponse is the AQI category histogram of one location.
type DistributionResponse struct {
	LocationID string                       `json:"locationId"`
	Days       int                          `json:"days"`
	Buckets    []DistributionBucketResponse `json:"buckets"`
}
