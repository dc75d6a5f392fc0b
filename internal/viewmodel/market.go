package viewmodel

import (
	"context"

	"cropsense/internal/logging"
	"cropsense/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultStorage     = "warehouse"
	DefaultTransitDays = 2
)

// MarketState is a copy of the market page
type MarketState struct {
	Crop            string
	Location        string
	StorageType     string
	TransitDays     int
	Loading         bool
	Err             error
	Recommendation  *models.MarketRecommendation
	Weather         *models.Weather
	WeatherFallback bool
	Spoilage        *models.SpoilageRisk
}

// Market finds the best mandi and the spoilage risk of getting the crop there
type Market struct {
	api    InsightsAPI
	logger *zap.Logger

	run
	state MarketState
}

func NewMarket(api InsightsAPI, logger *zap.Logger) *Market {
	return &Market{api: api, logger: logging.OrNop(logger)}
}

func (m *Market) Snapshot() MarketState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Market) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
	m.state.Loading = false
}

// Analyze fetches the recommendation and weather together, then prices the
// spoilage risk with the live temperature and humidity when weather arrived.
func (m *Market) Analyze(ctx context.Context, crop, location, storage string, transitDays int) (MarketState, error) {
	if storage == "" {
		storage = DefaultStorage
	}
	err := models.ValidateCropLocation(crop, location)
	if err == nil {
		err = models.ValidateShipment(storage, transitDays)
	}
	if err != nil {
		record("market", err)
		return m.Snapshot(), err
	}

	m.mu.Lock()
	ctx, gen := m.beginLocked(ctx)
	m.state.Crop, m.state.Location = crop, location
	m.state.StorageType, m.state.TransitDays = storage, transitDays
	m.state.Loading = true
	m.state.Err = nil
	m.mu.Unlock()

	var (
		recommended *models.MarketRecommendation
		weather     *models.Weather
		fallback    bool
		spoilage    *models.SpoilageRisk
	)
	err = gather(ctx, m.logger,
		fetch{
			name: "market recommendation",
			call: func(ctx context.Context) (err error) {
				recommended, err = m.api.RecommendMarket(ctx, crop, location)
				return err
			},
		},
		fetch{
			name: "weather",
			tier: Optional,
			call: func(ctx context.Context) (err error) {
				weather, err = m.api.Weather(ctx, location)
				return err
			},
			fallback: func() {
				w := FallbackWeather()
				weather, fallback = &w, true
			},
		},
	)
	if err == nil {
		req := models.SpoilageRequest{
			Temperature: dashboardTemperature,
			Humidity:    dashboardHumidity,
			StorageType: storage,
			TransitDays: transitDays,
			Crop:        crop,
		}
		if !fallback {
			req.Temperature, req.Humidity = weather.Temperature, weather.Humidity
		}
		err = gather(ctx, m.logger, fetch{
			name: "spoilage risk",
			call: func(ctx context.Context) (err error) {
				spoilage, err = m.api.SpoilageRisk(ctx, req)
				return err
			},
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.finishLocked(gen) {
		record("market", ErrSuperseded)
		return m.state, ErrSuperseded
	}
	m.state.Loading = false
	if err != nil {
		m.logger.Warn("market analysis failed",
			zap.String("crop", crop), zap.String("location", location), zap.Error(err))
		m.state.Err = err
		record("market", err)
		return m.state, err
	}

	m.state.Recommendation = recommended
	m.state.Weather = weather
	m.state.WeatherFallback = fallback
	m.state.Spoilage = spoilage
	record("market", nil)
	return m.state, nil
}
