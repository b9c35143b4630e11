package testutil

import "testing"

const (
	testDBDefaultUser     = "quizreport"
	testDBDefaultPassword = "quizreport"
	testDBDefaultName     = "quizreport"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(k, "")
		}

		cfg := DefaultTestDBConfig()
		if cfg.Host != "localhost" {
			t.Errorf("expected Host=localhost, got %s", cfg.Host)
		}
		if cfg.Port != "55432" {
			t.Errorf("expected Port=55432 (test DB), got %s", cfg.Port)
		}
		if cfg.User != testDBDefaultUser || cfg.Password != testDBDefaultPassword || cfg.DBName != testDBDefaultName {
			t.Errorf("unexpected credentials %+v", cfg)
		}
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")

		cfg := DefaultTestDBConfig()
		if cfg.Host != "postgres" {
			t.Errorf("expected Host=postgres, got %s", cfg.Host)
		}
		if cfg.Port != "5432" {
			t.Errorf("expected Port=5432 (CI DB), got %s", cfg.Port)
		}
	})
}

func TestBuildersProduceValidFixtures(t *testing.T) {
	spec := NewTestSpec("focus").WithLocales("en", "es", "pt-BR").WithVersion(3).Build()
	if err := spec.Validate(); err != nil {
		t.Fatalf("spec fixture invalid: %v", err)
	}
	if err := NewEnqueueRequest("p-1").Build().Validate(); err != nil {
		t.Fatalf("enqueue fixture invalid: %v", err)
	}
	if err := NewReportArtifact("p-1").Validate(); err != nil {
		t.Fatalf("artifact fixture invalid: %v", err)
	}
}

func TestTestDBConfigDSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss", DBName: "reports"}

	if got, want := cfg.DSN(""), "postgres://u:p%40ss@db:5432/reports?sslmode=disable"; got != want {
		t.Errorf("DSN() = %s, want %s", got, want)
	}
	if got, want := cfg.DSN("t_ab12"), "postgres://u:p%40ss@db:5432/reports?search_path=t_ab12%2Cpublic&sslmode=disable"; got != want {
		t.Errorf("DSN(schema) = %s, want %s", got, want)
	}
}
