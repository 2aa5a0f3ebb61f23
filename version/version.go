package version

import (
	"runtime/debug"
	"strings"
)

// ModulePath is the import path of this module.
const ModulePath = "github.com/kbukum/gostream"

// Version overrides the detected module version when set at build time:
//
//	go build -ldflags "-X github.com/kbukum/gostream/version.Version=v1.2.0"
var Version = ""

// Info describes the engine build linked into the running binary.
type Info struct {
	Module    string `json:"module"`
	Version   string `json:"version"`
	Revision  string `json:"revision,omitempty"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty"`
	IsRelease bool   `json:"is_release"`
}

// Get returns the version of this module as linked into the binary. When
// the engine is a dependency its version comes from the dependency list;
// when it is the main module, from the VCS stamp.
func Get() Info {
	buildInfo, _ := debug.ReadBuildInfo()
	return fromBuildInfo(buildInfo, Version)
}

func fromBuildInfo(buildInfo *debug.BuildInfo, override string) Info {
	info := Info{Module: ModulePath, Version: "dev"}
	if buildInfo != nil {
		info.GoVersion = buildInfo.GoVersion
		if mod := findModule(buildInfo); mod != nil && mod.Version != "" && mod.Version != "(devel)" {
			info.Version = mod.Version
		}
		if buildInfo.Main.Path == ModulePath {
			for _, setting := range buildInfo.Settings {
				switch setting.Key {
				case "vcs.revision":
					info.Revision = setting.Value
					if len(info.Revision) > 7 {
						info.Revision = info.Revision[:7]
					}
				case "vcs.modified":
					info.IsDirty = setting.Value == "true"
				}
			}
		}
	}
	if override != "" {
		info.Version = override
	}
	// pre-release and pseudo versions carry a hyphenated suffix
	info.IsRelease = strings.HasPrefix(info.Version, "v") && !info.IsDirty &&
		!strings.Contains(info.Version, "-")
	return info
}

// findModule returns the module entry of this module, following replace
// directives.
func findModule(buildInfo *debug.BuildInfo) *debug.Module {
	if buildInfo.Main.Path == ModulePath {
		return &buildInfo.Main
	}
	for _, dep := range buildInfo.Deps {
		if dep.Path != ModulePath {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace
		}
		return dep
	}
	return nil
}

// String returns the short version, with the revision and a dirty marker
// when known.
func (i Info) String() string {
	parts := []string{i.Version}
	if i.Revision != "" {
		parts = append(parts, i.Revision)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}
