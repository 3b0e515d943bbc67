package mapping

import (
	"errors"
	"strings"

	"stage-mapper/internal/diagnostic"
)

// ErrConfiguration matches every *ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("mapping configuration error")

// ConfigurationError reports a mapping that cannot be used. It is raised before
// any document is processed and is fatal for that mapping only.
type ConfigurationError struct {
	// Table is the table the diagnostics belong to, when known.
	Table string
	// Diagnostics holds every problem found, not just the first.
	Diagnostics diagnostic.Diagnostics
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	var sb strings.Builder

	sb.WriteString("invalid mapping")

	if e.Table != "" {
		sb.WriteString(" for table ")
		sb.WriteString(e.Table)
	}

	if err := e.Diagnostics.Error(); err != nil {
		sb.WriteString(": ")
		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Is makes errors.Is(err, ErrConfiguration) true.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// newConfigurationError wraps diagnostics when they hold at least one error.
func newConfigurationError(table string, diag *diagnostic.Diagnostics) error {
	if !diag.HasErrors() {
		return nil
	}

	return &ConfigurationError{Table: table, Diagnostics: *diag}
}
