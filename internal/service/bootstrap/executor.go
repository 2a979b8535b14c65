package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command is a single installer invocation.
type Command struct {
	// Dir is the working directory of the command.
	Dir string
	// Env is the full environment; nil inherits the current process environment.
	Env []string
	// Name is the program to run.
	Name string
	// Args are the program arguments.
	Args []string
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Executor runs installer commands for the BUILDING phase.
type Executor interface {
	Execute(ctx context.Context, command *Command) error
}

// SystemExecutor runs commands as child processes.
type SystemExecutor struct {
	// Stdout and Stderr receive the command output.
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the command and waits for it. A non-zero exit is an error.
func (e *SystemExecutor) Execute(ctx context.Context, command *Command) error {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Env = command.Env
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	return nil
}
