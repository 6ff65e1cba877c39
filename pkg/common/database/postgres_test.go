package database

import (
	"testing"

	"github.com/synaptica-ai/cardiorisk/pkg/common/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "cardio",
		PostgresSSLMode:  "require",
	}
	want := "host=db user=u password=p dbname=cardio port=5433 sslmode=require"
	if got := PostgresDSN(cfg); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
