// Package ci provides access to the CI platform surface: step inputs,
// the job-wide environment file, and workflow metadata.
package ci

import (
	"fmt"
	"os"
	"strings"
)

// GetInput returns the value of a step input. Inputs arrive as environment
// variables named INPUT_<NAME> with dashes mapped to underscores.
func GetInput(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return strings.TrimSpace(os.Getenv(key))
}

// WorkflowName returns the name of the workflow the current job belongs to.
func WorkflowName() string {
	return os.Getenv("GITHUB_WORKFLOW")
}

// ExportVariable sets an environment variable for the current process and for
// every later step of the job, by appending to the job environment file. When
// no environment file is available only the current process is affected.
func ExportVariable(key, value string) error {
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	envFile := os.Getenv("GITHUB_ENV")
	if envFile == "" {
		return nil
	}

	f, err := os.OpenFile(envFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open job environment file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEnvLine(key, value)); err != nil {
		return fmt.Errorf("export %s: %w", key, err)
	}
	return nil
}

// formatEnvLine renders a key/value pair in the job environment file format.
// Multiline values use the delimiter syntax.
func formatEnvLine(key, value string) string {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Sprintf("%s<<__BIOMECI_EOF__\n%s\n__BIOMECI_EOF__\n", key, value)
	}
	return fmt.Sprintf("%s=%s\n", key, value)
}
