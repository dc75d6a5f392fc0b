package server

import (
	"cropsense/internal/insight"
	"cropsense/internal/models"
	"cropsense/internal/render"
	"cropsense/internal/viewmodel"
)

// Display holds the preformatted strings a front end shows as-is
type Display struct {
	LatestPrice    string `json:"latest_price,omitempty"`
	Trend          string `json:"trend,omitempty"`
	Confidence     string `json:"confidence,omitempty"`
	ExpectedPrice  string `json:"expected_price,omitempty"`
	ExpectedProfit string `json:"expected_profit,omitempty"`
	SpoilageBucket string `json:"spoilage_bucket,omitempty"`
	SpoilageRisk   string `json:"spoilage_risk,omitempty"`
}

type DashboardResponse struct {
	Crop            string                       `json:"crop"`
	Location        string                       `json:"location"`
	Weather         *models.Weather              `json:"weather"`
	WeatherFallback bool                         `json:"weather_fallback"`
	Prediction      *models.PricePrediction      `json:"prediction"`
	Summary         *insight.PriceSummary        `json:"summary,omitempty"`
	Recommendation  *models.MarketRecommendation `json:"recommendation"`
	Spoilage        *models.SpoilageRisk         `json:"spoilage"`
	Display         Display                      `json:"display"`
}

type MarketResponse struct {
	Crop            string                       `json:"crop"`
	Location        string                       `json:"location"`
	StorageType     string                       `json:"storage_type"`
	TransitDays     int                          `json:"transit_days"`
	Recommendation  *models.MarketRecommendation `json:"recommendation"`
	Weather         *models.Weather              `json:"weather"`
	WeatherFallback bool                         `json:"weather_fallback"`
	Spoilage        *models.SpoilageRisk         `json:"spoilage"`
	Display         Display                      `json:"display"`
}

func newDashboardResponse(st viewmodel.DashboardState) DashboardResponse {
	resp := DashboardResponse{
		Crop:            st.Crop,
		Location:        st.Location,
		Weather:         st.Weather,
		WeatherFallback: st.WeatherFallback,
		Prediction:      st.Prediction,
		Recommendation:  st.Recommendation,
		Spoilage:        st.Spoilage,
	}
	if p := st.Prediction; p != nil {
		sum := insight.SummarizePrices(p.PredictedPrices)
		resp.Summary = &sum
		resp.Display.LatestPrice = render.Rupees(p.Latest())
		resp.Display.Trend = render.TrendBadge(p.Trend)
		resp.Display.Confidence = render.Confidence(p.ConfidenceScore)
	}
	fillMarketDisplay(&resp.Display, st.Recommendation, st.Spoilage)
	return resp
}

func newMarketResponse(st viewmodel.MarketState) MarketResponse {
	resp := MarketResponse{
		Crop:            st.Crop,
		Location:        st.Location,
		StorageType:     st.StorageType,
		TransitDays:     st.TransitDays,
		Recommendation:  st.Recommendation,
		Weather:         st.Weather,
		WeatherFallback: st.WeatherFallback,
		Spoilage:        st.Spoilage,
	}
	fillMarketDisplay(&resp.Display, st.Recommendation, st.Spoilage)
	return resp
}

func fillMarketDisplay(d *Display, rec *models.MarketRecommendation, risk *models.SpoilageRisk) {
	if rec != nil {
		d.ExpectedPrice = render.Rupees(rec.PredictedPrice)
		d.ExpectedProfit = render.Rupees(rec.ExpectedProfit)
	}
	if risk != nil {
		d.SpoilageBucket = render.SpoilageBucket(risk.SpoilageProbability)
		d.SpoilageRisk = render.Percent(risk.SpoilageProbability)
	}
}
