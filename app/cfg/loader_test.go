package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"--db-driver=sqlite", "--sqlite-path=/tmp/test.db"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected config to be loaded")
	}

	if cfg.DBDriver != "sqlite" {
		t.Errorf("Expected driver 'sqlite', got '%s'", cfg.DBDriver)
	}
	if cfg.ItemWindow != 5 {
		t.Errorf("Expected default item window 5, got %d", cfg.ItemWindow)
	}
	if cfg.ExcerptLength != 1000 {
		t.Errorf("Expected default excerpt length 1000, got %d", cfg.ExcerptLength)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("Expected default fetch timeout 30s, got %v", cfg.FetchTimeout)
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded config")
	}
}

func TestLoadArgsKafkaBrokers(t *testing.T) {
	cfg, err := LoadArgs([]string{"--db-driver=sqlite", "--kafka-brokers=a:9092, b:9092,,"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("Expected 2 brokers, got %d: %v", len(cfg.KafkaBrokers), cfg.KafkaBrokers)
	}
	if cfg.KafkaBrokers[1] != "b:9092" {
		t.Errorf("Expected trimmed broker 'b:9092', got '%s'", cfg.KafkaBrokers[1])
	}
}

func TestLoadArgsRejectsInvalidWindow(t *testing.T) {
	_, err := LoadArgs([]string{"--db-driver=sqlite", "--item-window=0"})
	if err == nil {
		t.Error("Expected error for zero item window")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Cfg
		wantErr bool
	}{
		{
			name:    "postgres without password",
			cfg:     Cfg{DBDriver: "postgres", ItemWindow: 5, ExcerptLength: 1000, FetchTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "postgres with password",
			cfg:     Cfg{DBDriver: "postgres", DBPassword: "secret", ItemWindow: 5, ExcerptLength: 1000, FetchTimeout: time.Second},
			wantErr: false,
		},
		{
			name:    "unknown driver",
			cfg:     Cfg{DBDriver: "mysql", ItemWindow: 5, ExcerptLength: 1000, FetchTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "zero excerpt",
			cfg:     Cfg{DBDriver: "sqlite", ItemWindow: 5, FetchTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "negative rate",
			cfg:     Cfg{DBDriver: "sqlite", ItemWindow: 5, ExcerptLength: 10, FetchTimeout: time.Second, EnrichRate: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadArgsWithGroup(t *testing.T) {
	var opts struct {
		User string `long:"user" description:"User to refresh"`
	}

	c, err := LoadArgsWithGroup([]string{"--db-driver", "sqlite", "--user", "alice"}, "Refresh Options", &opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c == nil {
		t.Fatal("Expected configuration")
	}
	if opts.User != "alice" {
		t.Errorf("Expected user alice, got %q", opts.User)
	}
}
