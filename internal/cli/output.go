package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/apperr"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
)

// Identified results print only their ID in quiet mode
type Identified interface {
	GetID() int
}

// Renderer results draw their own human-readable output
type Renderer interface {
	Render(w io.Writer) error
}

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool
	Out   io.Writer
	Err   io.Writer
}

// NewFormatter reads --json and --quiet from cmd and writes to its streams
func NewFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		if idGetter, ok := data.(Identified); ok {
			_, err := fmt.Fprintf(f.Out, "%d\n", idGetter.GetID())
			return err
		}
		return nil
	}

	if f.JSON {
		return json.NewEncoder(f.Out).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	return f.prettyPrint(data)
}

// Error reports err with its stable code and, when one applies, a hint
func (f *OutputFormatter) Error(err error) error {
	kind := apperr.Classify(err)
	return f.ErrorWithSuggestion(kind.Code(), apperr.Message(err), kind.Hint())
}

// ErrorWithSuggestion outputs error information with an optional suggestion
func (f *OutputFormatter) ErrorWithSuggestion(code, message, suggestion string) error {
	if f.JSON {
		errData := map[string]any{
			"code":    code,
			"message": message,
		}
		if suggestion != "" && suggestion != message {
			errData["suggestion"] = suggestion
		}
		return json.NewEncoder(f.Out).Encode(map[string]any{
			"success": false,
			"error":   errData,
		})
	}

	if _, err := fmt.Fprintf(f.Err, "%s %s\n", styles.ErrorStyle.Render("Error"), message); err != nil {
		return err
	}
	if suggestion != "" && suggestion != message {
		_, err := fmt.Fprintf(f.Err, "%s %s\n", styles.WarningStyle.Render("Hint"), suggestion)
		return err
	}
	return nil
}

func (f *OutputFormatter) prettyPrint(data any) error {
	if r, ok := data.(Renderer); ok {
		return r.Render(f.Out)
	}
	_, err := fmt.Fprintf(f.Out, "%+v\n", data)
	return err
}
