package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the config for required fields and valid values.
func Validate(c *Config) error {
	var errors []string

	if c.Version != CurrentVersion {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (must be %d)", c.Version, CurrentVersion),
		}.Error())
	}

	if err := validateService(c.Service); err != nil {
		errors = append(errors, err.Error())
	}

	for _, err := range validateTool(c.Tool) {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateService(s ServiceConfig) error {
	if !strings.Contains(s.BaseURL, ServicePlaceholder) {
		return ValidationError{
			Field:   "service.base_url",
			Message: fmt.Sprintf("must contain the %s placeholder", ServicePlaceholder),
		}
	}

	probe := strings.ReplaceAll(s.BaseURL, ServicePlaceholder, "probe")
	u, err := url.Parse(probe)
	if err != nil {
		return ValidationError{Field: "service.base_url", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{
			Field:   "service.base_url",
			Message: fmt.Sprintf("scheme must be http or https, got '%s'", u.Scheme),
		}
	}
	if u.Host == "" {
		return ValidationError{Field: "service.base_url", Message: "host is required"}
	}

	if _, err := s.TimeoutDuration(); err != nil {
		return ValidationError{Field: "service.timeout", Message: err.Error()}
	}

	return nil
}

func validateTool(t ToolConfig) []error {
	var errs []error
	fields := []struct {
		name  string
		value string
	}{
		{"tool.main_binary", t.MainBinary},
		{"tool.updater_binary", t.UpdaterBinary},
		{"tool.archive_name", t.ArchiveName},
		{"tool.version_file", t.VersionFile},
	}
	for _, f := range fields {
		if err := validateRelative(f.name, f.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// validateRelative requires a non-empty path that stays inside the tool home.
func validateRelative(field, p string) error {
	if p == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be relative to the tool home, got '%s'", p)}
	}
	if clean := path.Clean(filepath.ToSlash(p)); clean == ".." || strings.HasPrefix(clean, "../") {
		return ValidationError{Field: field, Message: fmt.Sprintf("must not escape the tool home, got '%s'", p)}
	}
	return nil
}
