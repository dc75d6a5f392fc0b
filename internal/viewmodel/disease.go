package viewmodel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cropsense/internal/api"
	"cropsense/internal/logging"
	"cropsense/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// MaxImageSize is the largest leaf photo accepted for upload
const MaxImageSize = 10 << 20

type DiseaseAPI interface {
	DetectDisease(ctx context.Context, img api.Upload, cropHint string) (*models.DiseaseDetection, error)
	DetectionHistory(ctx context.Context, limit int) (models.DetectionHistory, error)
}

// DiseaseState is a copy of the disease detection page
type DiseaseState struct {
	Filename    string
	ContentType string
	Size        int
	Loading     bool
	Err         error
	Result      *models.DiseaseDetection
	History     models.DetectionHistory
}

// Disease uploads a leaf photo for diagnosis and keeps the scan history
type Disease struct {
	api    DiseaseAPI
	logger *zap.Logger

	run
	selected *api.Upload
	histGen  uint64
	state    DiseaseState
}

func NewDisease(api DiseaseAPI, logger *zap.Logger) *Disease {
	return &Disease{api: api, logger: logging.OrNop(logger)}
}

func (d *Disease) Snapshot() DiseaseState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Disease) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.state.Loading = false
}

// SelectFile checks and selects the image at path. Nothing is sent yet.
func (d *Disease) SelectFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	if info.IsDir() {
		return &models.ValidationError{Field: "file", Message: fmt.Sprintf("%s is a directory", path)}
	}
	if info.Size() > MaxImageSize {
		return tooLarge()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return d.Select(filepath.Base(path), data)
}

// Select checks and selects an in-memory image. The content, not the name,
// decides whether it is an image.
func (d *Disease) Select(name string, data []byte) error {
	if len(data) > MaxImageSize {
		return tooLarge()
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return &models.ValidationError{
			Field:   "file",
			Message: "please upload an image file (JPEG, PNG or WebP)",
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.selected = &api.Upload{Filename: name, ContentType: mtype.String(), Data: data}
	d.state.Filename = name
	d.state.ContentType = mtype.String()
	d.state.Size = len(data)
	d.state.Result = nil
	d.state.Err = nil
	return nil
}

func tooLarge() error {
	return &models.ValidationError{Field: "file", Message: "image must be smaller than 10 MB"}
}

// Analyze uploads the selected image, then refreshes the history.
// A history failure does not fail the analysis.
func (d *Disease) Analyze(ctx context.Context, cropHint string) (DiseaseState, error) {
	d.mu.Lock()
	img := d.selected
	if img == nil {
		d.mu.Unlock()
		err := &models.ValidationError{Field: "file", Message: "please select an image first"}
		record("disease", err)
		return d.Snapshot(), err
	}
	ctx, gen := d.beginLocked(ctx)
	d.state.Loading = true
	d.state.Err = nil
	d.state.Result = nil
	d.mu.Unlock()

	var (
		result  *models.DiseaseDetection
		history models.DetectionHistory
		fresh   bool
	)
	err := gather(ctx, d.logger, fetch{
		name: "disease detection",
		call: func(ctx context.Context) (err error) {
			result, err = d.api.DetectDisease(ctx, *img, strings.TrimSpace(cropHint))
			return err
		},
	})
	if err == nil {
		err = gather(ctx, d.logger, fetch{
			name: "detection history",
			tier: Optional,
			call: func(ctx context.Context) (err error) {
				history, err = d.api.DetectionHistory(ctx, api.DefaultHistoryLimit)
				fresh = err == nil
				return err
			},
		})
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.finishLocked(gen) {
		record("disease", ErrSuperseded)
		return d.state, ErrSuperseded
	}
	d.state.Loading = false
	if err != nil {
		d.logger.Warn("disease detection failed", zap.String("file", img.Filename), zap.Error(err))
		d.state.Err = err
		record("disease", err)
		return d.state, err
	}

	d.state.Result = result
	if fresh {
		d.histGen++
		d.state.History = history
	}
	record("disease", nil)
	return d.state, nil
}

// LoadHistory fetches past scans. limit <= 0 uses the backend default.
func (d *Disease) LoadHistory(ctx context.Context, limit int) (models.DetectionHistory, error) {
	d.mu.Lock()
	d.histGen++
	gen := d.histGen
	d.mu.Unlock()

	history, err := d.api.DetectionHistory(ctx, limit)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if gen == d.histGen {
		d.state.History = history
	}
	return history, nil
}
