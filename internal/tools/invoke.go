package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/makhatib/mcp-microsoft365/internal/graph"
)

// Result is the caller-visible outcome of one invocation.
type Result struct {
	Text    string
	IsError bool
}

// Invoke runs one operation: registry lookup, schema validation, handler
// call. Every failure raised below this point — validation, token
// issuance, Graph classification, handler logic — is caught here, exactly
// once, and rendered as a single descriptive line. Nothing escapes
// unformatted.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) Result {
	def, ok := r.Get(name)
	if !ok {
		r.log.Warn().Str("tool", name).Msg("unknown tool requested")
		return Result{Text: fmt.Sprintf("Unknown tool: %s", name), IsError: true}
	}

	validated, err := def.Schema.Validate(args)
	if err != nil {
		r.log.Warn().Str("tool", name).Err(err).Msg("argument validation failed")
		return Result{Text: renderError(err), IsError: true}
	}

	start := time.Now()
	text, err := def.Handler(ctx, validated)
	if err != nil {
		r.log.Warn().
			Str("tool", name).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("tool failed")
		return Result{Text: renderError(err), IsError: true}
	}

	r.log.Debug().
		Str("tool", name).
		Dur("elapsed", time.Since(start)).
		Msg("tool completed")
	return Result{Text: text}
}

// renderError maps each failure kind to its one-line caller-visible form.
func renderError(err error) string {
	var (
		validationErr *ValidationError
		authErr       *graph.AuthError
		apiErr        *graph.APIError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Error()
	default:
		return "tool failed: " + err.Error()
	}
}
