// Package validation validates engine configuration.
//
// It supports both struct tag validation (using the validator library,
// with an extra pow2 tag for power-of-two sizes) and programmatic
// validation with error collection. Both report an errors.AppError with
// code INVALID_ARGUMENT whose "fields" detail lists every failed field.
//
// # Struct Tag Validation
//
//	type Tuning struct {
//	    Parallelism int `mapstructure:"parallelism" validate:"gte=0"`
//	    Interval    int `mapstructure:"interval" validate:"pow2"`
//	}
//	err := validation.Validate(tuning)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Min("leaf_factor", cfg.LeafFactor, 1).
//	    OneOf("logging.level", cfg.Logging.Level, levels).
//	    Err()
package validation
