package models

import (
	"fmt"
	"strings"
)

// User is the profile returned by /auth/me and embedded in login responses
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("user: email is empty")
	}
	return nil
}

// TokenResponse is the body of /auth/login and /auth/google
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

func (t *TokenResponse) Validate() error {
	if t.AccessToken == "" {
		return fmt.Errorf("token response: access_token is empty")
	}
	return t.User.Validate()
}

// Trend is the direction of a price forecast
type Trend string

const (
	TrendUpward   Trend = "upward"
	TrendDownward Trend = "downward"
	TrendStable   Trend = "stable"
)

// PricePrediction represents a price forecast for a crop at a location
type PricePrediction struct {
	PredictedPrices []float64 `json:"predicted_prices"`
	Trend           Trend     `json:"trend"`
	ConfidenceScore float64   `json:"confidence_score"` // 0-1
}

func (p *PricePrediction) Validate() error {
	if len(p.PredictedPrices) == 0 {
		return fmt.Errorf("price prediction: predicted_prices is empty")
	}
	switch Trend(strings.ToLower(string(p.Trend))) {
	case TrendUpward, TrendDownward, TrendStable:
	default:
		return fmt.Errorf("price prediction: unknown trend %q", p.Trend)
	}
	if err := unitInterval("price prediction: confidence_score", p.ConfidenceScore); err != nil {
		return err
	}
	return nil
}

// Latest returns the last forecast price
func (p *PricePrediction) Latest() float64 {
	if len(p.PredictedPrices) == 0 {
		return 0
	}
	return p.PredictedPrices[len(p.PredictedPrices)-1]
}

// MarketRecommendation is the best mandi to sell a crop in
type MarketRecommendation struct {
	BestMandi      string  `json:"best_mandi"`
	PredictedPrice float64 `json:"predicted_price"`
	ExpectedProfit float64 `json:"expected_profit"`
	Explanation    string  `json:"explanation"`
	Confidence     float64 `json:"confidence"` // 0-1
}

func (m *MarketRecommendation) Validate() error {
	if m.BestMandi == "" {
		return fmt.Errorf("market recommendation: best_mandi is empty")
	}
	return unitInterval("market recommendation: confidence", m.Confidence)
}

// SpoilageRequest is the input of /spoilage-risk/
type SpoilageRequest struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	StorageType string  `json:"storage_type"`
	TransitDays int     `json:"transit_days"`
	Crop        string  `json:"crop,omitempty"`
}

// SpoilageRisk is the backend's spoilage estimate
type SpoilageRisk struct {
	RiskLevel           string  `json:"risk_level"` // "Low", "Medium", "High" (backend may also send "Critical")
	SpoilageProbability float64 `json:"spoilage_probability"`
	Suggestion          string  `json:"suggestion"`
}

func (s *SpoilageRisk) Validate() error {
	if s.RiskLevel == "" {
		return fmt.Errorf("spoilage risk: risk_level is empty")
	}
	return unitInterval("spoilage risk: spoilage_probability", s.SpoilageProbability)
}

// Weather represents a current weather snapshot for a location
type Weather struct {
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	RainfallForecast string  `json:"rainfall_forecast"`
	Description      string  `json:"description"`
	WindSpeed        float64 `json:"wind_speed"`
}

func (w *Weather) Validate() error {
	if w.Humidity < 0 || w.Humidity > 100 {
		return fmt.Errorf("weather: humidity %.1f out of range", w.Humidity)
	}
	return nil
}

// DiseaseDetection is the analysis of one uploaded leaf image
type DiseaseDetection struct {
	DiseaseName string    `json:"diseaseName"`
	Severity    string    `json:"severity"`   // "Low", "Medium", "High"
	Confidence  float64   `json:"confidence"` // 0-100
	Treatment   []string  `json:"treatment"`
	Pesticide   string    `json:"pesticide"`
	Prevention  []string  `json:"prevention"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Timestamp   Timestamp `json:"timestamp"`
}

func (d *DiseaseDetection) Validate() error {
	if d.DiseaseName == "" {
		return fmt.Errorf("disease detection: diseaseName is empty")
	}
	if d.Confidence < 0 || d.Confidence > 100 {
		return fmt.Errorf("disease detection: confidence %.1f out of range", d.Confidence)
	}
	return nil
}

// DetectionHistoryItem is one past scan
type DetectionHistoryItem struct {
	ID          string    `json:"id"`
	DiseaseName string    `json:"diseaseName"`
	Confidence  float64   `json:"confidence"`
	Severity    string    `json:"severity"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CropHint    string    `json:"crop_hint,omitempty"`
	Timestamp   Timestamp `json:"timestamp"`
}

// DetectionHistory is the newest-first list of past scans
type DetectionHistory []DetectionHistoryItem

func (h DetectionHistory) Validate() error {
	for i, item := range h {
		if item.DiseaseName == "" {
			return fmt.Errorf("detection history[%d]: diseaseName is empty", i)
		}
	}
	return nil
}

// YieldRequest is the farm description sent to /yield/predict
type YieldRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Crop       string  `json:"crop"`
	LandSize   float64 `json:"landSize"`
	Unit       string  `json:"unit"` // "acres" or "hectares"
	SoilType   string  `json:"soilType"`
	Irrigation bool    `json:"irrigation"`
}

// YieldWeather is the weather block of a yield prediction
type YieldWeather struct {
	Temperature      float64 `json:"temperature"`
	Humidity         float64 `json:"humidity"`
	RainfallForecast float64 `json:"rainfall_forecast"`
	WindSpeed        float64 `json:"wind_speed"`
	Description      string  `json:"description"`
}

// YieldPrediction is the yield and profit estimate for a farm
type YieldPrediction struct {
	PredictedYield  float64      `json:"predictedYield"` // tons
	YieldPerAcre    float64      `json:"yieldPerAcre"`
	ExpectedRevenue float64      `json:"expectedRevenue"`
	EstimatedCost   float64      `json:"estimatedCost"`
	ExpectedProfit  float64      `json:"expectedProfit"`
	RiskLevel       string       `json:"riskLevel"`
	WeatherSummary  string       `json:"weatherSummary"`
	WeatherData     YieldWeather `json:"weatherData"`
	Recommendations []string     `json:"recommendations"`
	CropName        string       `json:"cropName"`
	LandSize        float64      `json:"landSize"`
	Unit            string       `json:"unit"`
	Timestamp       *Timestamp   `json:"timestamp,omitempty"`
}

func (y *YieldPrediction) Validate() error {
	if y.PredictedYield < 0 {
		return fmt.Errorf("yield prediction: negative predictedYield")
	}
	if y.RiskLevel == "" {
		return fmt.Errorf("yield prediction: riskLevel is empty")
	}
	return nil
}

// YieldHistoryItem is one past yield prediction
type YieldHistoryItem struct {
	ID             string    `json:"id"`
	CropName       string    `json:"cropName"`
	LandSize       float64   `json:"landSize"`
	Unit           string    `json:"unit"`
	PredictedYield float64   `json:"predictedYield"`
	ExpectedProfit float64   `json:"expectedProfit"`
	RiskLevel      string    `json:"riskLevel"`
	Timestamp      Timestamp `json:"timestamp"`
}

// YieldHistory is the newest-first list of past predictions
type YieldHistory []YieldHistoryItem

func (h YieldHistory) Validate() error {
	for i, item := range h {
		if item.CropName == "" {
			return fmt.Errorf("yield history[%d]: cropName is empty", i)
		}
	}
	return nil
}

// Health is the body of /health
type Health struct {
	Status string `json:"status"`
}

func unitInterval(field string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s %.3f outside [0,1]", field, v)
	}
	return nil
}
