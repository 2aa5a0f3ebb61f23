// Package config loads engine configuration.
//
// It uses Viper to read a YAML file and environment variables, with
// godotenv loading an optional .env file first. Environment variables
// override file values using the GOSTREAM_ prefix with underscore-separated
// paths (e.g. GOSTREAM_LOGGING_LEVEL).
//
// # Usage
//
//	cfg, err := config.Load("gostream")
//	if err != nil {
//	    return err
//	}
//	n, err := pipeline.FromSlice(items).Parallel().WithEngine(cfg).Count(ctx)
package config
