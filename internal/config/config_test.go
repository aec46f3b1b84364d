package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http timeouts = %+v, want 10s defaults", cfg.HTTP)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("cache backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Cache.Capacity != 100 || cfg.Cache.TTLSec != 300 {
		t.Errorf("cache sizing = %+v, want capacity 100 ttl 300", cfg.Cache)
	}
	if cfg.Cache.KeyPrefix != "docai:" {
		t.Errorf("key prefix = %q, want docai:", cfg.Cache.KeyPrefix)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{Cache: CacheConfig{Backend: "redis", Capacity: 50, TTLSec: 60, KeyPrefix: "x:"}}
	cfg.ApplyDefaults()

	if cfg.Cache.Backend != "redis" || cfg.Cache.Capacity != 50 || cfg.Cache.TTLSec != 60 || cfg.Cache.KeyPrefix != "x:" {
		t.Errorf("explicit values overwritten: %+v", cfg.Cache)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addrs", func(c *Config) { c.Cache.Backend = "redis" }, "cache.addrs"},
		{
			"redis with addrs",
			func(c *Config) {
				c.Cache.Backend = "redis"
				c.Cache.Addrs = []string{"localhost:6379"}
			},
			"",
		},
		{"min score out of range", func(c *Config) { c.Retrieval.MinScore = 1.5 }, "retrieval.min_score"},
		{"embedding key without model", func(c *Config) { c.Embedding.APIKey = "sk-test" }, "embedding.model"},
		{
			"embedding key with model",
			func(c *Config) {
				c.Embedding.APIKey = "sk-test"
				c.Embedding.Model = "text-embedding-3-small"
			},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCAI_TEST_PORT", "9090")

	in := []byte("port: ${DOCAI_TEST_PORT}\nprefix: ${DOCAI_TEST_MISSING:-docai:}\nempty: ${DOCAI_TEST_MISSING}\n")
	got := string(expandEnvVars(in))
	want := "port: 9090\nprefix: docai:\nempty: \n"
	if got != want {
		t.Errorf("expandEnvVars:\n got %q\nwant %q", got, want)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("default env = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("env = %q, want prod", got)
	}
}
