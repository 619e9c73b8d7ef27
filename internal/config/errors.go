package config

import "errors"

var (
	ErrReadingConfigFile        = errors.New("failed to read config file")
	ErrUnmarshallingConfig      = errors.New("failed to unmarshal config")
	ErrEmptyKafkaBrokers        = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic          = errors.New("kafka topic cannot be empty")
	ErrEmptyKafkaGroupID        = errors.New("kafka groupID cannot be empty")
	ErrEmptyServerAddr          = errors.New("server addr cannot be empty")
	ErrEmptyStorageDirectory    = errors.New("storage directory required for file backend")
	ErrUnknownStorageBackend    = errors.New("unknown storage backend")
	ErrInvalidSessionMaxSamples = errors.New("session maxSamples must be positive")
	ErrConfigFileMissing        = errors.New("config file not found")
)
