package aqi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aireclaro/aireclaro/internal/aqi"
	"github.com/aireclaro/aireclaro/internal/reading"
)

func TestClassify_ClampedOrdinalScale(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5},
		{6, 5}, {0, 1}, {-3, 1}, {99, 5},
	}

	for _, tt := range tests {
		got := aqi.Classify(tt.in)
		assert.Equal(t, tt.want, got.Level, "aqi %d", tt.in)
		assert.NotEmpty(t, got.Label)
		assert.NotEmpty(t, got.Color)
		assert.NotEmpty(t, got.Advisory)
		assert.NotEmpty(t, got.Tips)
	}
}

func TestClassify_Labels(t *testing.T) {
	assert.Equal(t, "Good", aqi.Classify(1).Label)
	assert.Equal(t, "Very Poor", aqi.Classify(5).Label)
}

func TestClassifyIndex_Bands(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{-5, "Good"},
		{0, "Good"},
		{50, "Good"},
		{51, "Moderate"},
		{100, "Moderate"},
		{101, "Unhealthy for Sensitive Groups"},
		{150, "Unhealthy for Sensitive Groups"},
		{151, "Very Unhealthy"},
		{400, "Very Unhealthy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, aqi.ClassifyIndex(tt.value).Label, "value %v", tt.value)
	}
}

func TestClassifyIndex_DistinctFromOrdinalScale(t *testing.T) {
	// 3 is "Moderate" on the 1..5 scale but a continuous index of 3 is Good.
	assert.Equal(t, "Moderate", aqi.Classify(3).Label)
	assert.Equal(t, "Good", aqi.ClassifyIndex(3).Label)
}

func TestHeatmapColor(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{10, "green"},
		{25, "green"},
		{26, "yellow"},
		{50, "yellow"},
		{75, "orange"},
		{100, "orange"},
		{120, "red"},
		{150, "red"},
		{151, "dark-red"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, aqi.HeatmapColor(tt.value), "value %v", tt.value)
	}
}

func TestSummarize_DominantPollutant(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	s := aqi.Summarize(f(12), f(30), n(2))
	assert.Equal(t, reading.PollutantPM10, s.Dominant)
	require.NotNil(t, s.Category)
	assert.Equal(t, 2, s.Category.Level)

	s = aqi.Summarize(f(30), f(12), n(2))
	assert.Equal(t, reading.PollutantPM25, s.Dominant)

	// Ties keep PM2.5 as the headline particulate.
	s = aqi.Summarize(f(20), f(20), n(1))
	assert.Equal(t, reading.PollutantPM25, s.Dominant)

	// Absent values never compete or classify.
	s = aqi.Summarize(nil, f(20), nil)
	assert.Equal(t, reading.PollutantPM10, s.Dominant)
	assert.Nil(t, s.Category)
}
