package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "vz-dev",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "vz-dev" {
		t.Errorf("expected firestore project to default to firebase project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.PubSub.ProjectID != "vz-dev" {
		t.Errorf("expected pubsub project to default to firebase project, got %s", cfg.PubSub.ProjectID)
	}
	if cfg.PubSub.OrderEventsTopic != defaultOrderEventsTopic {
		t.Errorf("unexpected default topic: %s", cfg.PubSub.OrderEventsTopic)
	}
	if cfg.Store.Timezone != defaultStoreTimezone {
		t.Errorf("unexpected default store timezone: %s", cfg.Store.Timezone)
	}
	if cfg.AddressLookup.BaseURL != defaultAddressLookupURL {
		t.Errorf("unexpected default address lookup url: %s", cfg.AddressLookup.BaseURL)
	}
	if cfg.RateLimits.DefaultPerMinute != 120 {
		t.Errorf("unexpected default rate limit: %d", cfg.RateLimits.DefaultPerMinute)
	}
	if cfg.Environment != "local" {
		t.Errorf("expected default environment local, got %s", cfg.Environment)
	}
	if !cfg.Features.EnableOrderEvents {
		t.Error("expected order events enabled by default")
	}
	if cfg.Features.EnableLegacyPlaced {
		t.Error("expected legacy placed status disabled by default")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"API_SERVER_PORT":                 "9090",
		"API_SERVER_READ_TIMEOUT":         "20s",
		"API_SERVER_WRITE_TIMEOUT":        "25s",
		"API_SERVER_IDLE_TIMEOUT":         "2m",
		"API_ENVIRONMENT":                 "Production",
		"API_FIREBASE_PROJECT_ID":         "vz-prod",
		"API_FIRESTORE_PROJECT_ID":        "vz-fire",
		"API_FIRESTORE_EMULATOR_HOST":     "127.0.0.1:8901",
		"API_PUBSUB_PROJECT_ID":           "vz-events",
		"API_PUBSUB_ORDER_EVENTS_TOPIC":   "orders-prod",
		"API_STORE_NAME":                  "Vitrine da Ana",
		"API_STORE_TIMEZONE":              "America/Manaus",
		"API_STORE_WHATSAPP_NUMBER":       "11987654321",
		"API_ADDRESS_LOOKUP_BASE_URL":     "https://cep.example.com/ws",
		"API_ADDRESS_LOOKUP_TIMEOUT":      "5s",
		"API_RATELIMIT_DEFAULT_PER_MIN":   "60",
		"API_RATELIMIT_AUTH_PER_MIN":      "300",
		"API_FEATURE_ORDER_EVENTS":        "false",
		"API_FEATURE_LEGACY_PLACED":       "true",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 25*time.Second {
		t.Errorf("unexpected write timeout: %s", cfg.Server.WriteTimeout)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected environment lowercased, got %s", cfg.Environment)
	}
	if cfg.Firestore.ProjectID != "vz-fire" {
		t.Errorf("unexpected firestore project: %s", cfg.Firestore.ProjectID)
	}
	if cfg.PubSub.ProjectID != "vz-events" || cfg.PubSub.OrderEventsTopic != "orders-prod" {
		t.Errorf("unexpected pubsub config: %+v", cfg.PubSub)
	}
	if cfg.Store.Timezone != "America/Manaus" {
		t.Errorf("unexpected store timezone: %s", cfg.Store.Timezone)
	}
	if loc, err := cfg.Store.Location(); err != nil || loc.String() != "America/Manaus" {
		t.Errorf("unexpected store location: %v %v", loc, err)
	}
	if cfg.AddressLookup.BaseURL != "https://cep.example.com/ws" {
		t.Errorf("unexpected address lookup url: %s", cfg.AddressLookup.BaseURL)
	}
	if cfg.AddressLookup.Timeout != 5*time.Second {
		t.Errorf("unexpected address lookup timeout: %s", cfg.AddressLookup.Timeout)
	}
	if cfg.RateLimits.DefaultPerMinute != 60 || cfg.RateLimits.AuthenticatedPerMinute != 300 {
		t.Errorf("unexpected rate limits: %+v", cfg.RateLimits)
	}
	if cfg.Features.EnableOrderEvents {
		t.Error("expected order events disabled by override")
	}
	if !cfg.Features.EnableLegacyPlaced {
		t.Error("expected legacy placed status enabled by override")
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	fields := validation.Fields()
	if len(fields) == 0 {
		t.Fatal("expected missing fields to be reported")
	}
	found := false
	for _, field := range fields {
		if field == "Firebase.ProjectID" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Firebase.ProjectID among missing fields, got %v", fields)
	}
}

func TestLoadInvalidTimezone(t *testing.T) {
	env := map[string]string{
		"API_FIREBASE_PROJECT_ID": "vz-dev",
		"API_STORE_TIMEZONE":      "Mars/Olympus_Mons",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected error for bogus timezone")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	contents := "API_FIREBASE_PROJECT_ID=vz-dotenv\nexport API_SERVER_PORT=7070\n# comment\nAPI_STORE_NAME=\"Loja Teste\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Firebase.ProjectID != "vz-dotenv" {
		t.Errorf("expected project from dotenv, got %s", cfg.Firebase.ProjectID)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv export, got %s", cfg.Server.Port)
	}
	if cfg.Store.Name != "Loja Teste" {
		t.Errorf("expected quoted value unwrapped, got %q", cfg.Store.Name)
	}
}
