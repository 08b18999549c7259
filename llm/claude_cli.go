package llm

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// ClaudeCLI implements Provider by shelling out to the claude CLI.
// No API key needed when the CLI is already installed and authenticated.
type ClaudeCLI struct {
	cliPath string
}

// NewClaudeCLI creates a new claude CLI provider.
func NewClaudeCLI() *ClaudeCLI {
	return &ClaudeCLI{}
}

// Name returns the provider name.
func (c *ClaudeCLI) Name() string {
	return "claude-cli"
}

// Available checks if the claude CLI is installed and accessible.
func (c *ClaudeCLI) Available() bool {
	path, err := exec.LookPath("claude")
	if err != nil {
		return false
	}
	c.cliPath = path
	return true
}

// Complete sends a prompt to claude CLI and returns the response.
func (c *ClaudeCLI) Complete(ctx context.Context, prompt string) (string, error) {
	return c.run(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with system message to claude CLI.
func (c *ClaudeCLI) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	return c.run(ctx, system, prompt)
}

func (c *ClaudeCLI) run(ctx context.Context, system, prompt string) (string, error) {
	args := []string{
		"--print", // Output response and exit (non-interactive mode)
	}

	if system != "" {
		args = append(args, "--system-prompt", system)
	}

	args = append(args, prompt)

	cmd := exec.CommandContext(ctx, c.cliPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Include stderr in error for debugging
		if stderr.Len() > 0 {
			return "", &CLIError{
				Err:    err,
				Stderr: stderr.String(),
			}
		}
		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}

// CLIError wraps CLI execution errors with stderr output.
type CLIError struct {
	Err    error
	Stderr string
}

func (e *CLIError) Error() string {
	if e.Stderr != "" {
		return e.Err.Error() + ": " + e.Stderr
	}
	return e.Err.Error()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}
