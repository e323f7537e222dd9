package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fracdao/fractional/internal/fraction"
	"github.com/fracdao/fractional/internal/vault"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation refused, scenario failed, replay mismatch
	ExitCommandError = 2 // Command error (bad flags, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// Response is the standard JSON response envelope for CLI output. Data is
// pre-rendered canonical JSON so domain values (amounts, ids) serialize
// the same way they do in the journal.
type Response struct {
	Status string          `json:"status"` // "ok" or "error"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the error structure for CLI responses. Code is a
// fraction.Code for refused operations, or a command-level code such as
// E_REPLAY or E_TEST_FAILED.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Payload outputs a successful result in the configured format. The map
// may hold any canonical-JSON value, domain types included.
func (f *OutputFormatter) Payload(data map[string]any) error {
	if f.Format == "json" {
		raw, err := fraction.MarshalCanonical(data)
		if err != nil {
			return err
		}
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: raw})
	}

	for _, k := range sortedKeys(data) {
		fmt.Fprintf(f.Writer, "%s: %v\n", k, data[k])
	}
	return nil
}

// OpResult outputs a committed operation's journal record.
func (f *OutputFormatter) OpResult(rec vault.OpRecord) error {
	if f.Format == "json" {
		raw, err := fraction.MarshalCanonical(map[string]any{
			"op":     rec.Name,
			"seq":    rec.Seq,
			"token":  rec.Token,
			"result": rec.Result,
		})
		if err != nil {
			return err
		}
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: raw})
	}

	fmt.Fprintf(f.Writer, "ok %s seq=%d\n", rec.Name, rec.Seq)
	for _, k := range sortedKeys(rec.Result) {
		fmt.Fprintf(f.Writer, "  %s: %v\n", k, rec.Result[k])
	}
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message},
		})
	}

	fmt.Fprintf(f.Writer, "error [%s]: %s\n", code, message)
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled. When the
// format is JSON, diagnostics go to ErrWriter so they cannot corrupt the
// JSON stream.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
