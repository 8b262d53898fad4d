package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const maxBatchSize = 1000

// Config holds all service settings, populated from environment variables
// and an optional .env file in the working directory.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// NormalizeCacheSize bounds the LRU in front of the normalizer; 0 disables it.
	NormalizeCacheSize int
}

// Load reads configuration from the environment, applying defaults where unset.
// Variables already present in the environment take precedence over .env.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_source_topic", "raw-positions")
	v.SetDefault("kafka_sink_topic", "normalized-positions")
	v.SetDefault("kafka_group_id", "geo-position-etl")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("batch_size", "50")
	v.SetDefault("batch_flush_interval", "500ms")
	v.SetDefault("normalize_cache_size", "10000")

	shutdownTimeout, err := parsePositiveDuration(v, "shutdown_timeout")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration(v, "batch_flush_interval")
	if err != nil {
		return nil, err
	}

	batchSize, err := strconv.Atoi(v.GetString("batch_size"))
	if err != nil || batchSize < 1 || batchSize > maxBatchSize {
		return nil, fmt.Errorf("invalid BATCH_SIZE: must be an integer between 1 and %d", maxBatchSize)
	}

	cacheSize, err := strconv.Atoi(v.GetString("normalize_cache_size"))
	if err != nil || cacheSize < 0 {
		return nil, errors.New("invalid NORMALIZE_CACHE_SIZE: must be a non-negative integer")
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(v.GetString("kafka_brokers")),
		KafkaSourceTopic:   v.GetString("kafka_source_topic"),
		KafkaSinkTopic:     v.GetString("kafka_sink_topic"),
		KafkaGroupID:       v.GetString("kafka_group_id"),
		HTTPAddr:           v.GetString("http_addr"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		NormalizeCacheSize: cacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.KafkaSourceTopic == cfg.KafkaSinkTopic {
		return nil, errors.New("KAFKA_SOURCE_TOPIC and KAFKA_SINK_TOPIC must differ")
	}

	return cfg, nil
}

func parsePositiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	name := strings.ToUpper(key)
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping blanks.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
