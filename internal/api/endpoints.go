package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"cropsense/internal/models"
)

const DefaultHistoryLimit = 20

// Health checks that the backend is up
func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	var h models.Health
	if err := c.getJSON(ctx, "health", "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Login exchanges email and password for an access token.
// The backend uses the OAuth2 password form, so the email goes in "username".
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok models.TokenResponse
	if err := c.postForm(ctx, "auth_login", "/auth/login", form, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var u models.User
	if err := c.postJSON(ctx, "auth_register", "/auth/register", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GoogleLogin exchanges a Google ID token credential for an access token
func (c *Client) GoogleLogin(ctx context.Context, credential string) (*models.TokenResponse, error) {
	in := map[string]string{"credential": credential}
	var tok models.TokenResponse
	if err := c.postJSON(ctx, "auth_google", "/auth/google", in, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me fetches the profile of the token's owner
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.getJSON(ctx, "auth_me", "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type cropLocation struct {
	Crop     string `json:"crop"`
	Location string `json:"location"`
}

func (c *Client) PredictPrice(ctx context.Context, crop, location string) (*models.PricePrediction, error) {
	var p models.PricePrediction
	if err := c.postJSON(ctx, "predict_price", "/predict-price/", cropLocation{crop, location}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Weather(ctx context.Context, location string) (*models.Weather, error) {
	var w models.Weather
	if err := c.getJSON(ctx, "weather", "/weather/", url.Values{"location": {location}}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) RecommendMarket(ctx context.Context, crop, location string) (*models.MarketRecommendation, error) {
	var m models.MarketRecommendation
	if err := c.postJSON(ctx, "recommend_market", "/recommend-market/", cropLocation{crop, location}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) SpoilageRisk(ctx context.Context, req models.SpoilageRequest) (*models.SpoilageRisk, error) {
	var s models.SpoilageRisk
	if err := c.postJSON(ctx, "spoilage_risk", "/spoilage-risk/", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upload is an image already read and checked on the client
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DetectDisease uploads a leaf image as multipart form data ("file", optional "crop_hint")
func (c *Client) DetectDisease(ctx context.Context, img Upload, cropHint string) (*models.DiseaseDetection, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, img.Filename))
	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("disease_detect: failed to build form: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("disease_detect: failed to build form: %w", err)
	}
	if cropHint != "" {
		if err := w.WriteField("crop_hint", cropHint); err != nil {
			return nil, fmt.Errorf("disease_detect: failed to build form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("disease_detect: failed to build form: %w", err)
	}

	var d models.DiseaseDetection
	err = c.do(ctx, request{
		endpoint:    "disease_detect",
		method:      http.MethodPost,
		path:        "/disease/detect",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, &d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DetectionHistory lists the user's past scans, newest first. limit <= 0 uses the default.
func (c *Client) DetectionHistory(ctx context.Context, limit int) (models.DetectionHistory, error) {
	var h models.DetectionHistory
	if err := c.getJSON(ctx, "disease_history", "/disease/history", limitQuery(limit), &h); err != nil {
		return nil, err
	}
	return h, nil
}

func (c *Client) PredictYield(ctx context.Context, req models.YieldRequest) (*models.YieldPrediction, error) {
	var y models.YieldPrediction
	if err := c.postJSON(ctx, "yield_predict", "/yield/predict", req, &y); err != nil {
		return nil, err
	}
	return &y, nil
}

// YieldHistory lists the user's past predictions, newest first. limit <= 0 uses the default.
func (c *Client) YieldHistory(ctx context.Context, limit int) (models.YieldHistory, error) {
	var h models.YieldHistory
	if err := c.getJSON(ctx, "yield_history", "/yield/history", limitQuery(limit), &h); err != nil {
		return nil, err
	}
	return h, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}
