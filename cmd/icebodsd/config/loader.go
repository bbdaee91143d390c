// Copyright (C) 2025 Icebods (engineering@icebods.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the daemon configuration from YAML. The file is
// created with defaults on first run; deployment secrets come from
// environment variables so the file can live in version control.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global IcebodsConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable. path may
// be empty, in which case ICEBODS_CONFIG or ~/.icebods/icebodsd.yaml is
// used.
func Load(path string) error {
	var err error
	once.Do(func() {
		err = loadInternal(path)
	})
	return err
}

func loadInternal(path string) error {
	configPath, err := resolvePath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("first run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}
	Global = DefaultConfig()
	if err = yaml.Unmarshal(data, &Global); err != nil {
		return fmt.Errorf("failed to parse the config file: %w", err)
	}
	applyEnvOverrides(&Global)
	return nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv("ICEBODS_CONFIG"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".icebods", "icebodsd.yaml"), nil
}

// applyEnvOverrides lets deployment secrets override file values.
func applyEnvOverrides(cfg *IcebodsConfig) {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		cfg.Mongo.URI = uri
	}
	if key := os.Getenv("ICEBODS_JWT_KEY"); key != "" {
		cfg.Auth.JWTKey = key
	}
	if bucket := os.Getenv("ICEBODS_GCS_BUCKET"); bucket != "" {
		cfg.GCS.Bucket = bucket
	}
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
