// Package handler provides command execution abstraction to reduce boilerplate
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thenoetrevino/tablero/internal/cli"
)

// Handler defines the interface for command execution
type Handler interface {
	// Execute runs the command as the CLI's actor; ctx already carries it
	Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)
}

// Func adapts a function to Handler
type Func func(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)

func (f Func) Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error) {
	return f(ctx, c, args)
}

// Arguments captures parsed CLI arguments and flags
type Arguments struct {
	Flags map[string]any
	Args  []string
	cmd   *cobra.Command
}

// NewArguments collects the flags explicitly set on cmd
func NewArguments(cmd *cobra.Command, args []string) *Arguments {
	return &Arguments{Flags: parseFlagsToMap(cmd), Args: args, cmd: cmd}
}

// GetCmd returns the cobra command for access to flag parsing utilities
func (a *Arguments) GetCmd() *cobra.Command {
	return a.cmd
}

// Command wraps common command execution logic: it opens the application,
// runs h, formats the result and turns failures into an exit code.
// Returns a cobra RunE compatible function.
func Command(open cli.Opener, h Handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		formatter := cli.NewFormatter(cmd)

		c, err := cli.NewCLI(cmd, open)
		if err != nil {
			return fail(formatter, &cli.ExitCodeError{Code: cli.ExitError, Err: err})
		}
		defer func() { _ = c.Close(context.WithoutCancel(cmd.Context())) }()

		result, err := h.Execute(c.Context(cmd.Context()), c, NewArguments(cmd, args))
		if err != nil {
			return fail(formatter, err)
		}
		return formatter.Success(result)
	}
}

// fail reports err once and returns it carrying its exit code
func fail(formatter *cli.OutputFormatter, err error) error {
	var exit *cli.ExitCodeError
	if errors.As(err, &exit) {
		code := "ERROR"
		switch exit.Code {
		case cli.ExitUsage:
			code = "USAGE"
		case cli.ExitDataErr:
			code = "INVALID_INPUT"
		}
		_ = formatter.ErrorWithSuggestion(code, exit.Err.Error(), "")
		return exit
	}

	_ = formatter.Error(err)
	return &cli.ExitCodeError{Code: cli.ExitCodeFor(err), Err: err}
}

// parseFlagsToMap converts cobra command flags to a map
func parseFlagsToMap(cmd *cobra.Command) map[string]any {
	flags := make(map[string]any)

	// Visit all flags that were explicitly set
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "string":
			if v, err := cmd.Flags().GetString(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "int":
			if v, err := cmd.Flags().GetInt(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "bool":
			if v, err := cmd.Flags().GetBool(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "stringArray":
			if v, err := cmd.Flags().GetStringArray(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "stringSlice":
			if v, err := cmd.Flags().GetStringSlice(f.Name); err == nil {
				flags[f.Name] = v
			}
		}
	})

	return flags
}

// GetString retrieves a string flag with default
func (a *Arguments) GetString(name string, defaultVal string) string {
	v, ok := a.Flags[name].(string)
	if !ok {
		return defaultVal
	}
	return v
}

// MustGetString retrieves a string flag that has to be set
func (a *Arguments) MustGetString(name string) (string, error) {
	v, ok := a.Flags[name].(string)
	if !ok {
		return "", &cli.ExitCodeError{Code: cli.ExitUsage, Err: fmt.Errorf("--%s is required", name)}
	}
	return v, nil
}

// GetInt retrieves an int flag with default
func (a *Arguments) GetInt(name string, defaultVal int) int {
	v, ok := a.Flags[name].(int)
	if !ok {
		return defaultVal
	}
	return v
}

// MustGetInt retrieves an int flag that has to be set
func (a *Arguments) MustGetInt(name string) (int, error) {
	v, ok := a.Flags[name].(int)
	if !ok {
		return 0, &cli.ExitCodeError{Code: cli.ExitUsage, Err: fmt.Errorf("--%s is required", name)}
	}
	return v, nil
}

// GetBool retrieves a bool flag
func (a *Arguments) GetBool(name string) bool {
	v, _ := a.Flags[name].(bool)
	return v
}

// GetStringArray retrieves a repeated string flag
func (a *Arguments) GetStringArray(name string) []string {
	v, _ := a.Flags[name].([]string)
	return v
}
