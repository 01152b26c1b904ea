// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultBuildImage is the cross-compilation image used for
	// containerized builds when build.image is not set. It ships cargo,
	// the android/apple rust std components, and the NDK.
	DefaultBuildImage ImageRef = "ghcr.io/smartvaults/svbind-cross:latest"

	// DefaultAndroidAPILevel is the Android API level targeted when
	// neither the project file nor the machine config pins one.
	DefaultAndroidAPILevel = 24

	// MinAndroidAPILevel and MaxAndroidAPILevel bound configurable API levels.
	MinAndroidAPILevel = 21
	MaxAndroidAPILevel = 35
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidToolPath is returned when a ToolPath value is whitespace-only.
	ErrInvalidToolPath = errors.New("invalid tool path")
	// ErrInvalidNdkPath is returned when an NdkPath value is whitespace-only.
	ErrInvalidNdkPath = errors.New("invalid ndk path")
	// ErrInvalidImageRef is returned when an ImageRef value is whitespace-only.
	ErrInvalidImageRef = errors.New("invalid image reference")
	// ErrInvalidAPILevel is returned when an Android API level is out of range.
	ErrInvalidAPILevel = errors.New("invalid android api level")
	// ErrInvalidJobCount is returned when a parallel job count is negative.
	ErrInvalidJobCount = errors.New("invalid job count")
	// ErrInvalidBuildConfig is the sentinel error wrapped by InvalidBuildConfigError.
	ErrInvalidBuildConfig = errors.New("invalid build config")
	// ErrInvalidAndroidConfig is the sentinel error wrapped by InvalidAndroidConfigError.
	ErrInvalidAndroidConfig = errors.New("invalid android config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ContainerEngine specifies which container runtime to use.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ToolPath represents a filesystem path to an executable.
	// The zero value ("") is valid and means "resolve from PATH".
	ToolPath string

	// InvalidToolPathError is returned when a ToolPath value is
	// non-empty but whitespace-only.
	InvalidToolPathError struct {
		Value ToolPath
	}

	// NdkPath represents a filesystem path to an Android NDK installation.
	// The zero value ("") is valid and means "resolve from the environment"
	// (ANDROID_NDK_HOME, then ndk/<version> under ANDROID_HOME).
	NdkPath string

	// InvalidNdkPathError is returned when an NdkPath value is
	// non-empty but whitespace-only.
	InvalidNdkPathError struct {
		Value NdkPath
	}

	// ImageRef represents a container image reference for containerized
	// builds. The zero value ("") is valid and means DefaultBuildImage.
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef value is
	// non-empty but whitespace-only.
	InvalidImageRefError struct {
		Value ImageRef
	}

	// InvalidAPILevelError is returned when an Android API level is out of
	// the supported range. It wraps ErrInvalidAPILevel for errors.Is().
	InvalidAPILevelError struct {
		Value int
	}

	// InvalidJobCountError is returned when a parallel job count is negative.
	InvalidJobCountError struct {
		Value int
	}

	// InvalidBuildConfigError is returned when a BuildConfig has invalid fields.
	// It wraps ErrInvalidBuildConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidBuildConfigError struct {
		FieldErrors []error
	}

	// InvalidAndroidConfigError is returned when an AndroidConfig has invalid fields.
	// It wraps ErrInvalidAndroidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidAndroidConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the machine-level configuration: where toolchains live
	// and how builds run on this machine. Project-level choices (which
	// crate, which triples, which package identifiers) live in the
	// project file, not here.
	Config struct {
		// ContainerEngine specifies whether to use "podman" or "docker"
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// Build configures how native builds run
		Build BuildConfig `json:"build" mapstructure:"build"`
		// Android configures NDK resolution
		Android AndroidConfig `json:"android" mapstructure:"android"`
		// Cargo configures the cargo invocation
		Cargo CargoConfig `json:"cargo" mapstructure:"cargo"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// BuildConfig configures how native builds run.
	BuildConfig struct {
		// InContainer runs cargo inside a container instead of on the host.
		InContainer bool `json:"in_container" mapstructure:"in_container"`
		// Image overrides the cross-compilation image for containerized builds.
		Image ImageRef `json:"image" mapstructure:"image"`
		// Jobs caps cargo's parallelism (0 = cargo's default).
		Jobs int `json:"jobs" mapstructure:"jobs"`
		// Locked passes --locked to cargo when a Cargo.lock is present.
		Locked bool `json:"locked" mapstructure:"locked"`
	}

	// AndroidConfig configures Android NDK resolution.
	AndroidConfig struct {
		// NdkHome pins the NDK installation to use.
		NdkHome NdkPath `json:"ndk_home" mapstructure:"ndk_home"`
		// APILevel selects the Android API level the NDK compilers target.
		APILevel int `json:"api_level" mapstructure:"api_level"`
	}

	// CargoConfig configures the cargo invocation.
	CargoConfig struct {
		// Path overrides the cargo executable (default: "cargo" from PATH).
		Path ToolPath `json:"path" mapstructure:"path"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: podman, docker)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error {
	return ErrInvalidContainerEngine
}

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types,
// and a list of validation errors if it is not.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEnginePodman, ContainerEngineDocker:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// String returns the string representation of the ToolPath.
func (p ToolPath) String() string { return string(p) }

// IsValid returns whether the ToolPath is valid.
// The zero value ("") is valid (means "resolve from PATH").
// Non-zero values must not be whitespace-only.
func (p ToolPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidToolPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidToolPathError.
func (e *InvalidToolPathError) Error() string {
	return fmt.Sprintf("invalid tool path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidToolPath for errors.Is() compatibility.
func (e *InvalidToolPathError) Unwrap() error { return ErrInvalidToolPath }

// String returns the string representation of the NdkPath.
func (p NdkPath) String() string { return string(p) }

// IsValid returns whether the NdkPath is valid.
// The zero value ("") is valid (means "resolve from the environment").
// Non-zero values must not be whitespace-only.
func (p NdkPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidNdkPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidNdkPathError.
func (e *InvalidNdkPathError) Error() string {
	return fmt.Sprintf("invalid ndk path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidNdkPath for errors.Is() compatibility.
func (e *InvalidNdkPathError) Unwrap() error { return ErrInvalidNdkPath }

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// IsValid returns whether the ImageRef is valid.
// The zero value ("") is valid (means DefaultBuildImage).
// Non-zero values must not be whitespace-only.
func (r ImageRef) IsValid() (bool, []error) {
	if r == "" {
		return true, nil
	}
	if strings.TrimSpace(string(r)) == "" {
		return false, []error{&InvalidImageRefError{Value: r}}
	}
	return true, nil
}

// Error implements the error interface for InvalidImageRefError.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidImageRef for errors.Is() compatibility.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// Error implements the error interface for InvalidAPILevelError.
func (e *InvalidAPILevelError) Error() string {
	return fmt.Sprintf("invalid android api level %d (valid: %d through %d, or 0 for the default)",
		e.Value, MinAndroidAPILevel, MaxAndroidAPILevel)
}

// Unwrap returns ErrInvalidAPILevel for errors.Is() compatibility.
func (e *InvalidAPILevelError) Unwrap() error { return ErrInvalidAPILevel }

// Error implements the error interface for InvalidJobCountError.
func (e *InvalidJobCountError) Error() string {
	return fmt.Sprintf("invalid job count %d: must not be negative", e.Value)
}

// Unwrap returns ErrInvalidJobCount for errors.Is() compatibility.
func (e *InvalidJobCountError) Unwrap() error { return ErrInvalidJobCount }

// IsValid returns whether the BuildConfig has valid fields.
// It delegates to Image.IsValid() and checks the job count range.
// Bool fields (InContainer, Locked) need no validation.
func (c BuildConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Image.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Jobs < 0 {
		errs = append(errs, &InvalidJobCountError{Value: c.Jobs})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBuildConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidBuildConfigError.
func (e *InvalidBuildConfigError) Error() string {
	return fmt.Sprintf("invalid build config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidBuildConfig for errors.Is() compatibility.
func (e *InvalidBuildConfigError) Unwrap() error { return ErrInvalidBuildConfig }

// IsValid returns whether the AndroidConfig has valid fields.
// It delegates to NdkHome.IsValid() and checks the API level range.
// An APILevel of 0 means "use the default" and is valid.
func (c AndroidConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.NdkHome.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.APILevel != 0 && (c.APILevel < MinAndroidAPILevel || c.APILevel > MaxAndroidAPILevel) {
		errs = append(errs, &InvalidAPILevelError{Value: c.APILevel})
	}
	if len(errs) > 0 {
		return false, []error{&InvalidAndroidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidAndroidConfigError.
func (e *InvalidAndroidConfigError) Error() string {
	return fmt.Sprintf("invalid android config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidAndroidConfig for errors.Is() compatibility.
func (e *InvalidAndroidConfigError) Unwrap() error { return ErrInvalidAndroidConfig }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to ContainerEngine.IsValid(), Build.IsValid(),
// Android.IsValid(), Cargo.Path.IsValid(), and UI.IsValid().
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Build.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Android.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Cargo.Path.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// BuildImage returns the effective cross-compilation image.
func (c BuildConfig) BuildImage() ImageRef {
	if c.Image == "" {
		return DefaultBuildImage
	}
	return c.Image
}

// EffectiveAPILevel returns the configured API level or the default.
func (c AndroidConfig) EffectiveAPILevel() int {
	if c.APILevel == 0 {
		return DefaultAndroidAPILevel
	}
	return c.APILevel
}

// CargoExecutable returns the configured cargo path or the bare name for
// PATH resolution.
func (c CargoConfig) CargoExecutable() string {
	if c.Path == "" {
		return "cargo"
	}
	return string(c.Path)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEnginePodman,
		Build: BuildConfig{
			InContainer: false,
			Image:       "", // Will use DefaultBuildImage if empty
			Jobs:        0,  // cargo decides
			Locked:      true,
		},
		Android: AndroidConfig{
			NdkHome:  "", // Will resolve from the environment if empty
			APILevel: DefaultAndroidAPILevel,
		},
		Cargo: CargoConfig{
			Path: "", // Will resolve from PATH if empty
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
