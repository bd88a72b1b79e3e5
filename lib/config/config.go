// Copyright 2026 The Pushwire Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pushwire/pushwire/lib/ref"
	"github.com/pushwire/pushwire/lib/secret"
)

// DefaultListenAddress is the webhook listen address used when none is
// configured. Localhost only — external access requires a reverse proxy.
const DefaultListenAddress = "127.0.0.1:8419"

// Config holds the relay's process-wide configuration. It is built once
// at startup and passed explicitly to the components that need it; no
// package-level state.
type Config struct {
	// ListenAddress is the TCP address the webhook listener binds to.
	ListenAddress string

	// GitlabToken is the shared secret GitLab presents in the
	// X-Gitlab-Token header. Required: without a configured token no
	// inbound request can authenticate.
	GitlabToken *secret.Buffer

	// MatrixServer is the base URL of the Matrix homeserver
	// (e.g., "https://matrix.example.org").
	MatrixServer string

	// MatrixUser is the account the relay logs in as.
	MatrixUser ref.UserID

	// MatrixDeviceID optionally pins the device ID used at login, so
	// the homeserver reuses one device record across relay restarts.
	MatrixDeviceID string

	// MatrixPassword is the account password. Required.
	MatrixPassword *secret.Buffer

	// MatrixRoomID is the room push notices are delivered to.
	MatrixRoomID ref.RoomID
}

// envConfig is the environment surface for the non-secret fields,
// parsed via caarlos0/env struct tags.
type envConfig struct {
	ListenAddress  string `env:"PUSHWIRE_LISTEN"`
	MatrixServer   string `env:"MATRIX_SERVER"`
	MatrixUser     string `env:"MATRIX_USER"`
	MatrixDeviceID string `env:"MATRIX_DEVICE_ID"`
	MatrixRoomID   string `env:"MATRIX_ROOM_ID"`
}

// fileConfig is the YAML surface for the non-secret fields.
type fileConfig struct {
	Listen string `yaml:"listen"`
	Matrix struct {
		Server   string `yaml:"server"`
		User     string `yaml:"user"`
		DeviceID string `yaml:"device_id"`
		RoomID   string `yaml:"room_id"`
	} `yaml:"matrix"`
}

// Load builds a Config from the process environment.
func Load() (*Config, error) {
	parsed, err := env.ParseAs[envConfig]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return finalize(parsed)
}

// LoadFile builds a Config from a YAML file. Credentials still come
// from the environment — the file must not contain them.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return finalize(envConfig{
		ListenAddress:  parsed.Listen,
		MatrixServer:   parsed.Matrix.Server,
		MatrixUser:     parsed.Matrix.User,
		MatrixDeviceID: parsed.Matrix.DeviceID,
		MatrixRoomID:   parsed.Matrix.RoomID,
	})
}

// finalize validates the non-secret fields, loads the credentials from
// the environment, and assembles the immutable Config. On any failure
// the partially loaded secret buffers are released.
func finalize(raw envConfig) (*Config, error) {
	cfg := &Config{
		ListenAddress:  raw.ListenAddress,
		MatrixServer:   raw.MatrixServer,
		MatrixDeviceID: raw.MatrixDeviceID,
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	var problems []error

	if cfg.MatrixServer == "" {
		problems = append(problems, errors.New("MATRIX_SERVER is required"))
	}

	switch {
	case raw.MatrixUser == "":
		problems = append(problems, errors.New("MATRIX_USER is required"))
	default:
		user, err := ref.ParseUserID(raw.MatrixUser)
		if err != nil {
			problems = append(problems, fmt.Errorf("MATRIX_USER: %w", err))
		}
		cfg.MatrixUser = user
	}

	switch {
	case raw.MatrixRoomID == "":
		problems = append(problems, errors.New("MATRIX_ROOM_ID is required"))
	default:
		room, err := ref.ParseRoomID(raw.MatrixRoomID)
		if err != nil {
			problems = append(problems, fmt.Errorf("MATRIX_ROOM_ID: %w", err))
		}
		cfg.MatrixRoomID = room
	}

	token, err := secret.ReadFromEnv("GITLAB_TOKEN")
	switch {
	case err != nil:
		problems = append(problems, err)
	case token == nil:
		// Fail closed: with no configured token, no inbound request
		// could ever authenticate, so refusing to start is the honest
		// behavior.
		problems = append(problems, errors.New("GITLAB_TOKEN (or GITLAB_TOKEN_FILE) is required"))
	default:
		cfg.GitlabToken = token
	}

	password, err := secret.ReadFromEnv("MATRIX_PASSWORD")
	switch {
	case err != nil:
		problems = append(problems, err)
	case password == nil:
		problems = append(problems, errors.New("MATRIX_PASSWORD (or MATRIX_PASSWORD_FILE) is required"))
	default:
		cfg.MatrixPassword = password
	}

	if len(problems) > 0 {
		cfg.Close()
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(problems...))
	}
	return cfg, nil
}

// Close releases the secret buffers. Call once at process shutdown.
func (c *Config) Close() {
	if c.GitlabToken != nil {
		c.GitlabToken.Close()
	}
	if c.MatrixPassword != nil {
		c.MatrixPassword.Close()
	}
}
