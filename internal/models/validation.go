package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError is a client-side input rejection. It never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

const MinPasswordLength = 6

// Soil types offered by the yield predictor
var SoilTypes = []string{"alluvial", "black", "red", "sandy", "clay"}

// ValidateCropLocation checks the dashboard/market form
func ValidateCropLocation(crop, location string) error {
	if strings.TrimSpace(crop) == "" {
		return invalid("crop", "please select a crop")
	}
	if strings.TrimSpace(location) == "" {
		return invalid("location", "please enter a location")
	}
	return nil
}

// Storage types the spoilage model knows
var StorageTypes = []string{"cold storage", "refrigerated", "warehouse", "silo", "open", "jute bags", "plastic bags"}

// MaxTransitDays bounds the market form's transit input
const MaxTransitDays = 60

// ValidateShipment checks the storage and transit fields of the market form
func ValidateShipment(storage string, transitDays int) error {
	if transitDays < 0 || transitDays > MaxTransitDays {
		return invalid("transit_days", fmt.Sprintf("must be between 0 and %d", MaxTransitDays))
	}
	for _, st := range StorageTypes {
		if strings.EqualFold(storage, st) {
			return nil
		}
	}
	return invalid("storage_type", fmt.Sprintf("unknown storage type %q", storage))
}

// ValidateCredentials checks a login form
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("", "please fill in all required fields")
	}
	return nil
}

// ValidateRegistration checks a sign-up form
func ValidateRegistration(name, email, password, confirm string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return invalid("", "please fill in all required fields")
	}
	if password != confirm {
		return invalid("password", "passwords do not match")
	}
	if len(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// Validate checks the yield form before it is submitted
func (r *YieldRequest) Validate() error {
	if r.Latitude == 0 && r.Longitude == 0 {
		return invalid("location", "please set your farm location first")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return invalid("latitude", "must be between -90 and 90")
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return invalid("longitude", "must be between -180 and 180")
	}
	if strings.TrimSpace(r.Crop) == "" {
		return invalid("crop", "please select a crop")
	}
	if r.LandSize <= 0 {
		return invalid("landSize", "enter valid land size")
	}
	switch r.Unit {
	case "acres", "hectares":
	default:
		return invalid("unit", fmt.Sprintf("unknown unit %q", r.Unit))
	}
	for _, s := range SoilTypes {
		if r.SoilType == s {
			return nil
		}
	}
	return invalid("soilType", fmt.Sprintf("unknown soil type %q", r.SoilType))
}
