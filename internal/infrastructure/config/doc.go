// Package config handles loading and validating cloudbridge service
// configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// It deliberately does NOT hold the cloud account credentials: those
// live in the per-installation settings store (internal/settings) where
// they can be encrypted at rest.
//
// Security Considerations:
//   - The local API key should be set via CLOUDBRIDGE_API_KEY rather
//     than committed to the config file
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cloud.UserAgent)
package config
