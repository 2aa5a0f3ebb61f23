// Package version reports the version of the engine linked into the
// running binary. Observability uses it as the instrumentation scope
// version of the engine's tracer and meter.
//
// The version is read from the module build information and can be
// overridden at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/gostream/version.Version=v1.0.0"
package version
