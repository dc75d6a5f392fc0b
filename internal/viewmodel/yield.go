package viewmodel

import (
	"context"

	"cropsense/internal/api"
	"cropsense/internal/logging"
	"cropsense/internal/models"

	"go.uber.org/zap"
)

type YieldAPI interface {
	PredictYield(ctx context.Context, req models.YieldRequest) (*models.YieldPrediction, error)
	YieldHistory(ctx context.Context, limit int) (models.YieldHistory, error)
}

// YieldState is a copy of the yield predictor page
type YieldState struct {
	Request    models.YieldRequest
	Loading    bool
	Err        error
	Prediction *models.YieldPrediction
	History    models.YieldHistory
}

// Yield predicts harvest and profit for a farm
type Yield struct {
	api    YieldAPI
	logger *zap.Logger

	run
	histGen uint64
	state   YieldState
}

func NewYield(api YieldAPI, logger *zap.Logger) *Yield {
	return &Yield{api: api, logger: logging.OrNop(logger)}
}

func (y *Yield) Snapshot() YieldState {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.state
}

func (y *Yield) Cancel() {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.cancelLocked()
	y.state.Loading = false
}

// Predict validates the farm, requests a prediction and refreshes the history
func (y *Yield) Predict(ctx context.Context, req models.YieldRequest) (YieldState, error) {
	if err := req.Validate(); err != nil {
		record("yield", err)
		return y.Snapshot(), err
	}

	y.mu.Lock()
	ctx, gen := y.beginLocked(ctx)
	y.state.Request = req
	y.state.Loading = true
	y.state.Err = nil
	y.mu.Unlock()

	var (
		prediction *models.YieldPrediction
		history    models.YieldHistory
		fresh      bool
	)
	err := gather(ctx, y.logger, fetch{
		name: "yield prediction",
		call: func(ctx context.Context) (err error) {
			prediction, err = y.api.PredictYield(ctx, req)
			return err
		},
	})
	if err == nil {
		err = gather(ctx, y.logger, fetch{
			name: "yield history",
			tier: Optional,
			call: func(ctx context.Context) (err error) {
				history, err = y.api.YieldHistory(ctx, api.DefaultHistoryLimit)
				fresh = err == nil
				return err
			},
		})
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	if !y.finishLocked(gen) {
		record("yield", ErrSuperseded)
		return y.state, ErrSuperseded
	}
	y.state.Loading = false
	if err != nil {
		y.logger.Warn("yield prediction failed", zap.String("crop", req.Crop), zap.Error(err))
		y.state.Err = err
		record("yield", err)
		return y.state, err
	}

	y.state.Prediction = prediction
	if fresh {
		y.histGen++
		y.state.History = history
	}
	record("yield", nil)
	return y.state, nil
}

// LoadHistory fetches past predictions. limit <= 0 uses the backend default.
func (y *Yield) LoadHistory(ctx context.Context, limit int) (models.YieldHistory, error) {
	y.mu.Lock()
	y.histGen++
	gen := y.histGen
	y.mu.Unlock()

	history, err := y.api.YieldHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	y.mu.Lock()
	defer y.mu.Unlock()
	if gen == y.histGen {
		y.state.History = history
	}
	return history, nil
}
