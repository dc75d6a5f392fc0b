package viewmodel

import (
	"context"

	"cropsense/internal/logging"
	"cropsense/internal/models"

	"go.uber.org/zap"
)

// InsightsAPI is what the dashboard and market pages need from the backend
type InsightsAPI interface {
	Weather(ctx context.Context, location string) (*models.Weather, error)
	PredictPrice(ctx context.Context, crop, location string) (*models.PricePrediction, error)
	RecommendMarket(ctx context.Context, crop, location string) (*models.MarketRecommendation, error)
	SpoilageRisk(ctx context.Context, req models.SpoilageRequest) (*models.SpoilageRisk, error)
}

// FallbackWeather is shown when the weather service cannot be reached
func FallbackWeather() models.Weather {
	return models.Weather{
		Temperature:      28,
		Humidity:         65,
		RainfallForecast: "N/A",
		Description:      "Weather unavailable",
	}
}

// Spoilage inputs the dashboard sends when it has no storage details from the user
const (
	dashboardTemperature = 30
	dashboardHumidity    = 75
	dashboardStorage     = "normal"
	dashboardTransitDays = 2
)

// DashboardState is a copy of the dashboard page
type DashboardState struct {
	Crop            string
	Location        string
	Loading         bool
	Err             error
	Weather         *models.Weather
	WeatherFallback bool
	Prediction      *models.PricePrediction
	Recommendation  *models.MarketRecommendation
	Spoilage        *models.SpoilageRisk
}

// Ready reports whether every result slot is filled
func (s DashboardState) Ready() bool {
	return s.Weather != nil && s.Prediction != nil && s.Recommendation != nil && s.Spoilage != nil
}

// Dashboard runs "Run Analysis": weather, price forecast, best market and
// spoilage risk for one crop and location.
type Dashboard struct {
	api    InsightsAPI
	logger *zap.Logger

	run
	state DashboardState
}

func NewDashboard(api InsightsAPI, logger *zap.Logger) *Dashboard {
	return &Dashboard{api: api, logger: logging.OrNop(logger)}
}

func (d *Dashboard) Snapshot() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Cancel abandons the in-flight analysis
func (d *Dashboard) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.state.Loading = false
}

// Analyze fetches all four results concurrently. Weather is optional; the
// rest are required.
func (d *Dashboard) Analyze(ctx context.Context, crop, location string) (DashboardState, error) {
	if err := models.ValidateCropLocation(crop, location); err != nil {
		record("dashboard", err)
		return d.Snapshot(), err
	}

	d.mu.Lock()
	ctx, gen := d.beginLocked(ctx)
	d.state.Crop, d.state.Location = crop, location
	d.state.Loading = true
	d.state.Err = nil
	d.mu.Unlock()

	var (
		weather     *models.Weather
		fallback    bool
		prediction  *models.PricePrediction
		recommended *models.MarketRecommendation
		spoilage    *models.SpoilageRisk
	)
	err := gather(ctx, d.logger,
		fetch{
			name: "weather",
			tier: Optional,
			call: func(ctx context.Context) (err error) {
				weather, err = d.api.Weather(ctx, location)
				return err
			},
			fallback: func() {
				w := FallbackWeather()
				weather, fallback = &w, true
			},
		},
		fetch{
			name: "price forecast",
			call: func(ctx context.Context) (err error) {
				prediction, err = d.api.PredictPrice(ctx, crop, location)
				return err
			},
		},
		fetch{
			name: "market recommendation",
			call: func(ctx context.Context) (err error) {
				recommended, err = d.api.RecommendMarket(ctx, crop, location)
				return err
			},
		},
		fetch{
			name: "spoilage risk",
			call: func(ctx context.Context) (err error) {
				spoilage, err = d.api.SpoilageRisk(ctx, models.SpoilageRequest{
					Temperature: dashboardTemperature,
					Humidity:    dashboardHumidity,
					StorageType: dashboardStorage,
					TransitDays: dashboardTransitDays,
					Crop:        crop,
				})
				return err
			},
		},
	)

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.finishLocked(gen) {
		record("dashboard", ErrSuperseded)
		return d.state, ErrSuperseded
	}
	d.state.Loading = false
	if err != nil {
		d.logger.Warn("dashboard analysis failed",
			zap.String("crop", crop), zap.String("location", location), zap.Error(err))
		d.state.Err = err
		record("dashboard", err)
		return d.state, err
	}

	d.state.Weather = weather
	d.state.WeatherFallback = fallback
	d.state.Prediction = prediction
	d.state.Recommendation = recommended
	d.state.Spoilage = spoilage
	record("dashboard", nil)
	return d.state, nil
}
