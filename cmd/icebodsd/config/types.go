// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

// IcebodsConfig is the daemon configuration, loaded from YAML with
// environment overrides for deployment secrets.
type IcebodsConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Mongo   MongoConfig   `yaml:"mongo"`
	GCS     GCSConfig     `yaml:"gcs"`
	Auth    AuthConfig    `yaml:"auth"`
	Cleanup CleanupConfig `yaml:"cleanup"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

type ServerConfig struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string `yaml:"addr"`
}

type MongoConfig struct {
	// URI is the connection string. Overridden by MONGODB_URI.
	URI string `yaml:"uri"`
	// Database is the database name.
	Database string `yaml:"database"`
}

type GCSConfig struct {
	// Bucket holds the item info images. Empty keeps images in memory,
	// which only makes sense for local development.
	Bucket string `yaml:"bucket"`
	// CredentialsFile is a service account key path. Empty uses
	// application default credentials.
	CredentialsFile string `yaml:"credentials_file"`
}

type AuthConfig struct {
	// JWTKey signs and verifies admin tokens. Overridden by
	// ICEBODS_JWT_KEY. Empty disables auth entirely (local development).
	JWTKey string `yaml:"jwt_key"`
}

type CleanupConfig struct {
	// JournalPath is the BadgerDB directory for the blob-deletion
	// journal. Empty disables the journal.
	JournalPath string `yaml:"journal_path"`
	// SweepIntervalSeconds is how often the retry worker runs.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Dir enables file logging when set.
	Dir string `yaml:"dir"`
	// JSON switches stderr output to JSON.
	JSON bool `yaml:"json"`
}

type TracingConfig struct {
	// OTLPEndpoint is the trace receiver, e.g. "localhost:4317".
	// Empty disables exporting.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	// Insecure disables TLS on the exporter connection.
	Insecure bool `yaml:"insecure"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() IcebodsConfig {
	return IcebodsConfig{
		Server: ServerConfig{Addr: ":3000"},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "icebods",
		},
		Cleanup: CleanupConfig{
			JournalPath:          "~/.icebods/journal",
			SweepIntervalSeconds: 60,
		},
		Logging: LoggingConfig{Level: "info"},
		Tracing: TracingConfig{Insecure: true},
	}
}
