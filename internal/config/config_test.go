package config

import (
	"reflect"
	"testing"
)

func TestS3ConfigIsConfigured(t *testing.T) {
	t.Run("empty config is not configured", func(t *testing.T) {
		cfg := S3Config{}
		if cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=false for empty config")
		}
	})

	t.Run("required fields set is configured", func(t *testing.T) {
		cfg := S3Config{
			Endpoint:        "https://s3.eu-central-1.amazonaws.com",
			Region:          "eu-central-1",
			Bucket:          "mealbuddy-images",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			PublicBaseURL:   "https://mealbuddy-images.s3.eu-central-1.amazonaws.com",
		}
		if !cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=true when all required fields are set")
		}
	})
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://s3.eu-central-1.amazonaws.com",
		Bucket:   "mealbuddy-images",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		level, code, _ := (S3Config{}).Diagnostics()
		if level != "INFO" || code != "s3_not_configured" {
			t.Fatalf("expected INFO/s3_not_configured, got %s/%s", level, code)
		}
	})

	t.Run("partial config", func(t *testing.T) {
		level, code, _ := (S3Config{Endpoint: "https://s3.eu-central-1.amazonaws.com"}).Diagnostics()
		if level != "WARN" || code != "s3_partial_config" {
			t.Fatalf("expected WARN/s3_partial_config, got %s/%s", level, code)
		}
	})

	t.Run("ready", func(t *testing.T) {
		level, code, _ := (S3Config{
			Endpoint:        "https://s3.eu-central-1.amazonaws.com",
			Region:          "eu-central-1",
			Bucket:          "mealbuddy-images",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			PublicBaseURL:   "https://mealbuddy-images.s3.eu-central-1.amazonaws.com",
		}).Diagnostics()
		if level != "INFO" || code != "s3_ready" {
			t.Fatalf("expected INFO/s3_ready, got %s/%s", level, code)
		}
	})
}

func TestParseCORSOrigins(t *testing.T) {
	t.Run("empty in local falls back to dev origins", func(t *testing.T) {
		got := parseCORSOrigins("", "local")
		want := []string{"http://localhost:5173", "http://localhost:3000"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("empty outside local means deny", func(t *testing.T) {
		if got := parseCORSOrigins("", "production"); got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	})

	t.Run("trims and drops empty entries", func(t *testing.T) {
		got := parseCORSOrigins(" https://app.mealbuddy.app ,, https://staging.mealbuddy.app", "production")
		want := []string{"https://app.mealbuddy.app", "https://staging.mealbuddy.app"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})
}

func TestLoadDatabaseURLPriority(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://url")
	t.Setenv("DATABASE_URL_POOLED", "postgres://pooled")
	t.Setenv("DATABASE_URL_DIRECT", "postgres://direct")

	cfg := Load()
	if cfg.DatabaseURL != "postgres://pooled" {
		t.Fatalf("runtime URL = %q, want pooled to win", cfg.DatabaseURL)
	}
	if cfg.DatabaseURLDirect != "postgres://direct" {
		t.Fatalf("direct URL = %q", cfg.DatabaseURLDirect)
	}
}

func TestEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	if got := envInt("PORT", 8080); got != 8080 {
		t.Fatalf("got %d, want default 8080", got)
	}
}
