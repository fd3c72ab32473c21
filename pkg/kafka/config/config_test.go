package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "")
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Enabled {
		t.Error("Kafka must be disabled unless KAFKA_ENABLED is set")
	}
	if cfg.Topic != DefaultKafkaTopic {
		t.Errorf("Topic = %q", cfg.Topic)
	}
}

func TestLoad_Enabled(t *testing.T) {
	t.Setenv(EnvKafkaEnabled, "true")
	t.Setenv(EnvKafkaBrokers, " broker-1:9092 , broker-2:9092")
	t.Setenv(EnvKafkaDLQTopic, "booking-events-dlq")
	t.Setenv(EnvKafkaPublishTimeout, "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.PublishTimeout != 2*time.Second {
		t.Errorf("PublishTimeout = %s", cfg.PublishTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Enabled:              true,
			Brokers:              []string{"localhost:9092"},
			Topic:                "booking-events",
			ProducerMaxAttempts:  3,
			ProducerBatchTimeout: time.Millisecond,
			ProducerRequireAcks:  -1,
			ProducerCompression:  "snappy",
			PublishTimeout:       time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"disabled ignores everything", func(c *Config) { c.Enabled = false; c.Topic = "" }, ""},
		{"empty broker", func(c *Config) { c.Brokers = []string{""} }, "Broker 0 cannot be empty"},
		{"dlq equals topic", func(c *Config) { c.DLQTopic = c.Topic }, "DLQTopic must differ"},
		{"bad compression", func(c *Config) { c.ProducerCompression = "brotli" }, "ProducerCompression"},
		{"bad acks", func(c *Config) { c.ProducerRequireAcks = 2 }, "ProducerRequireAcks"},
		{"no publish timeout", func(c *Config) { c.PublishTimeout = 0 }, "PublishTimeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
