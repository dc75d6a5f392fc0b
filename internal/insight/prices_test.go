package insight

import (
	"math"
	"testing"
)

func TestSummarizePrices_Forecast(t *testing.T) {
	s := SummarizePrices([]float64{2350, 2390, 2420, 2450, 2410, 2480, 2530})

	if s.Days != 7 {
		t.Errorf("Days = %d, want 7", s.Days)
	}
	if s.First != 2350 || s.Latest != 2530 {
		t.Errorf("First/Latest = %v/%v, want 2350/2530", s.First, s.Latest)
	}
	if s.Min != 2350 || s.Max != 2530 {
		t.Errorf("Min/Max = %v/%v, want 2350/2530", s.Min, s.Max)
	}
	if s.Change != 180 {
		t.Errorf("Change = %v, want 180", s.Change)
	}
	if math.Abs(s.ChangePercent-7.6596) > 0.001 {
		t.Errorf("ChangePercent = %v, want ~7.66", s.ChangePercent)
	}
	if math.Abs(s.Mean-2432.857) > 0.001 {
		t.Errorf("Mean = %v, want ~2432.857", s.Mean)
	}
	if len(s.Outliers) != 0 {
		t.Errorf("expected no outliers in a smooth forecast, got %v", s.Outliers)
	}
	if s.Volatile() {
		t.Error("smooth forecast should not be volatile")
	}
}

func TestSummarizePrices_Outlier(t *testing.T) {
	prices := []float64{100, 100, 100, 100, 200, 100, 100, 100, 100, 100}
	s := SummarizePrices(prices)

	if len(s.Outliers) != 1 {
		t.Fatalf("expected 1 outlier, got %d", len(s.Outliers))
	}
	o := s.Outliers[0]
	if o.Day != 5 || o.Price != 200 {
		t.Errorf("outlier = %+v, want day 5 price 200", o)
	}
	if o.ZScore <= OutlierThreshold {
		t.Errorf("outlier z-score %v should exceed %v", o.ZScore, OutlierThreshold)
	}
	if !s.Volatile() {
		t.Error("series with a spike should be volatile")
	}
}

func TestSummarizePrices_Edges(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   PriceSummary
	}{
		{
			name:   "empty",
			prices: nil,
			want:   PriceSummary{},
		},
		{
			name:   "single value",
			prices: []float64{42},
			want:   PriceSummary{Days: 1, First: 42, Latest: 42, Min: 42, Max: 42, Mean: 42},
		},
		{
			name:   "flat series",
			prices: []float64{5, 5, 5},
			want:   PriceSummary{Days: 3, First: 5, Latest: 5, Min: 5, Max: 5, Mean: 5},
		},
		{
			name:   "starts at zero",
			prices: []float64{0, 10},
			want:   PriceSummary{Days: 2, First: 0, Latest: 10, Min: 0, Max: 10, Change: 10, Mean: 5, StdDev: math.Sqrt(50)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SummarizePrices(tt.prices)
			if got.Days != tt.want.Days || got.First != tt.want.First || got.Latest != tt.want.Latest ||
				got.Min != tt.want.Min || got.Max != tt.want.Max || got.Change != tt.want.Change ||
				got.ChangePercent != tt.want.ChangePercent || got.Mean != tt.want.Mean ||
				math.Abs(got.StdDev-tt.want.StdDev) > 1e-9 || len(got.Outliers) != 0 {
				t.Errorf("SummarizePrices(%v) = %+v, want %+v", tt.prices, got, tt.want)
			}
		})
	}
}

func TestCalculateZScore(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		mean   float64
		stdDev float64
		want   float64
	}{
		{"value above mean", 100.0, 50.0, 25.0, 2.0},
		{"value below mean", 25.0, 50.0, 25.0, -1.0},
		{"value equals mean", 50.0, 50.0, 25.0, 0.0},
		{"zero standard deviation", 50.0, 50.0, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateZScore(tt.value, tt.mean, tt.stdDev)
			if got != tt.want {
				t.Errorf("CalculateZScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOutlier(t *testing.T) {
	tests := []struct {
		name   string
		zScore float64
		want   bool
	}{
		{"high positive outlier", 2.5, true},
		{"high negative outlier", -2.5, true},
		{"not an outlier", 1.5, false},
		{"boundary case - exactly 2.0", 2.0, false},
		{"boundary case - just over 2.0", 2.1, true},
		{"zero", 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsOutlier(tt.zScore)
			if got != tt.want {
				t.Errorf("IsOutlier(%f) = %v, want %v", tt.zScore, got, tt.want)
			}
		})
	}
}

func TestCalculateStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single value", []float64{42}, 0},
		{"empty", nil, 0},
		{"two values", []float64{2, 4}, math.Sqrt(2)},
		{"sample deviation", []float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0 / 7.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateStdDev(tt.values, calculateMean(tt.values))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("calculateStdDev(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
