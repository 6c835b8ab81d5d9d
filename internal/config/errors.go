package config

import "fmt"

// PermissionError reports a config file that cannot be read or written.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // suggested fix command
	Details string
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		msg += e.Details + "\n"
	}
	msg += "💡 Fix: " + e.Fix
	return msg
}

// ConfigNotFoundError reports a missing config file.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// InvalidConfigError reports a config file that does not parse or holds
// out-of-range values.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Message != "" {
		msg += e.Message + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}
