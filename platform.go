package nativebuf

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Platform represents the current operating system
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformLinux   Platform = "linux"
	PlatformMacOS   Platform = "darwin"
	PlatformUnknown Platform = "unknown"
)

// CurrentPlatform returns the platform the program is running on
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "android":
		return PlatformAndroid
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformUnknown
	}
}

// IsAndroid returns true if running on Android
func IsAndroid() bool {
	return CurrentPlatform() == PlatformAndroid
}

// propertyReader reads Android system properties. *ffi.Libc implements it.
type propertyReader interface {
	SystemProperty(name string) (string, error)
}

// detectAPILevel reads ro.build.version.sdk.
func detectAPILevel(props propertyReader) (int, error) {
	v, err := props.SystemProperty("ro.build.version.sdk")
	if err != nil {
		return 0, fmt.Errorf("reading API level: %w", err)
	}
	level, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("reading API level: unexpected value %q", v)
	}
	return level, nil
}

// resolveRevision turns RevisionAuto into a concrete revision using the
// pinned API level or, failing that, the device property.
func resolveRevision(t TargetConfig, props propertyReader) (Revision, error) {
	if t.Revision != RevisionAuto {
		return t.Revision, nil
	}
	level := t.APILevel
	if level == 0 {
		if props == nil {
			return RevisionAuto, fmt.Errorf("nativebuf: revision is auto but no API level is available")
		}
		var err error
		if level, err = detectAPILevel(props); err != nil {
			return RevisionAuto, fmt.Errorf("nativebuf: %w", err)
		}
	}
	return RevisionForAPILevel(level)
}
