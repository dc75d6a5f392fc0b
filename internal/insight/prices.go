// Package insight derives presentation-only figures from a price forecast.
// Nothing here reaches the backend; it only reshapes what the backend returned.
package insight

import "math"

// OutlierThreshold is how many standard deviations from the mean a forecast
// day must sit to be flagged
const OutlierThreshold = 2.0

// Outlier is one forecast day that stands out from the rest
type Outlier struct {
	Day    int     `json:"day"` // 1-based position in the forecast
	Price  float64 `json:"price"`
	ZScore float64 `json:"z_score"`
}

// PriceSummary describes a forecast series
type PriceSummary struct {
	Days          int       `json:"days"`
	First         float64   `json:"first"`
	Latest        float64   `json:"latest"`
	Min           float64   `json:"min"`
	Max           float64   `json:"max"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Mean          float64   `json:"mean"`
	StdDev        float64   `json:"std_dev"`
	Outliers      []Outlier `json:"outliers"`
}

// Volatile reports whether the spread exceeds 5% of the mean
func (s PriceSummary) Volatile() bool {
	return s.Mean != 0 && s.StdDev/math.Abs(s.Mean) > 0.05
}

// SummarizePrices computes the summary of a forecast. An empty series gives
// the zero summary.
func SummarizePrices(prices []float64) PriceSummary {
	if len(prices) == 0 {
		return PriceSummary{}
	}

	s := PriceSummary{
		Days:   len(prices),
		First:  prices[0],
		Latest: prices[len(prices)-1],
		Min:    prices[0],
		Max:    prices[0],
	}
	for _, p := range prices[1:] {
		s.Min = math.Min(s.Min, p)
		s.Max = math.Max(s.Max, p)
	}
	s.Change = s.Latest - s.First
	if s.First != 0 {
		s.ChangePercent = s.Change / s.First * 100
	}

	s.Mean = calculateMean(prices)
	s.StdDev = calculateStdDev(prices, s.Mean)
	if s.StdDev == 0 {
		return s // flat series, nothing stands out
	}

	for i, p := range prices {
		z := CalculateZScore(p, s.Mean, s.StdDev)
		if IsOutlier(z) {
			s.Outliers = append(s.Outliers, Outlier{Day: i + 1, Price: p, ZScore: z})
		}
	}
	return s
}

// CalculateZScore calculates the Z-score for a value given mean and standard deviation
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// IsOutlier checks if a Z-score is more than OutlierThreshold std devs from the mean
func IsOutlier(zScore float64) bool {
	return math.Abs(zScore) > OutlierThreshold
}

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateStdDev is the sample standard deviation
func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
