package models

import (
	"errors"
	"testing"
)

func TestValidateCropLocation(t *testing.T) {
	tests := []struct {
		name      string
		crop      string
		location  string
		wantField string
	}{
		{"valid", "Wheat", "Punjab, India", ""},
		{"missing crop", "", "Punjab", "crop"},
		{"blank location", "Wheat", "   ", "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCropLocation(tt.crop, tt.location)
			checkField(t, err, tt.wantField)
		})
	}
}

func TestValidateShipment(t *testing.T) {
	tests := []struct {
		name      string
		storage   string
		days      int
		wantField string
	}{
		{"warehouse", "warehouse", 2, ""},
		{"case insensitive", "Cold Storage", 0, ""},
		{"max transit", "silo", MaxTransitDays, ""},
		{"negative transit", "silo", -1, "transit_days"},
		{"too long", "silo", MaxTransitDays + 1, "transit_days"},
		{"unknown storage", "cave", 2, "storage_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkField(t, ValidateShipment(tt.storage, tt.days), tt.wantField)
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name                            string
		userName, email, pass, confirm string
		wantField                       string
		wantErr                         bool
	}{
		{"valid", "Asha", "asha@example.com", "secret1", "secret1", "", false},
		{"empty name", "", "asha@example.com", "secret1", "secret1", "", true},
		{"mismatch", "Asha", "asha@example.com", "secret1", "secret2", "password", true},
		{"short", "Asha", "asha@example.com", "abc", "abc", "password", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.userName, tt.email, tt.pass, tt.confirm)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRegistration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.wantField != "" {
				checkField(t, err, tt.wantField)
			}
		})
	}
}

func TestYieldRequestValidate(t *testing.T) {
	valid := YieldRequest{Latitude: 30.9, Longitude: 75.85, Crop: "Rice", LandSize: 5, Unit: "acres", SoilType: "alluvial"}

	tests := []struct {
		name      string
		mutate    func(r *YieldRequest)
		wantField string
	}{
		{"valid", func(r *YieldRequest) {}, ""},
		{"no location", func(r *YieldRequest) { r.Latitude, r.Longitude = 0, 0 }, "location"},
		{"latitude out of range", func(r *YieldRequest) { r.Latitude = 91 }, "latitude"},
		{"longitude out of range", func(r *YieldRequest) { r.Longitude = -181 }, "longitude"},
		{"no crop", func(r *YieldRequest) { r.Crop = " " }, "crop"},
		{"zero land", func(r *YieldRequest) { r.LandSize = 0 }, "landSize"},
		{"bad unit", func(r *YieldRequest) { r.Unit = "bigha" }, "unit"},
		{"bad soil", func(r *YieldRequest) { r.SoilType = "loam" }, "soilType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			checkField(t, r.Validate(), tt.wantField)
		})
	}
}

// checkField fails unless err is nil (wantField "") or a ValidationError on wantField
func checkField(t *testing.T, err error, wantField string) {
	t.Helper()
	if wantField == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Field != wantField {
		t.Errorf("field = %q, want %q", ve.Field, wantField)
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should match ErrValidation")
	}
}
