// Package config loads and validates AssetFlow configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. Built-in defaults
//  2. The YAML file passed to Load
//  3. ASSETFLOW_* environment variables
//
// LoadEnvFile can be called first to populate the environment from a .env
// file during development.
//
// Secrets (JWT secret, MQTT password, InfluxDB token, Redis password) should
// come from the environment rather than the file.
//
// Usage:
//
//	_ = config.LoadEnvFile(".env")
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
