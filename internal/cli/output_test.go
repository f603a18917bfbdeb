package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(CheckoutResult{Items: 3, Total: "24.50"})
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   CheckoutResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, CheckoutResult{Items: 3, Total: "24.50"}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(CodeCatalog, "could not load categories", nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeCatalog, resp.Error.Code)
	assert.Equal(t, "could not load categories", resp.Error.Message)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_TextUsesRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success(CategoriesResult{Categories: []string{"all", "beauty"}}))
	assert.Equal(t, "all\nbeauty\n", buf.String())
}

func TestOutputFormatter_TextFallsBackToPrintln(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("cart cleared"))
	assert.Equal(t, "cart cleared\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			err := formatter.Error(CodeNotFound, "product 99 not found", "status 404")
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [E002]: product 99 not found")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: status 404")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("fetching %s", "category=all")

			assert.Empty(t, out.String(), "diagnostics never go to the data stream")
			if tt.wantLog {
				assert.Equal(t, "fetching category=all\n", errOut.String())
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetErrWriter_FallsBackToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Writer: buf}
	assert.Same(t, buf, formatter.GetErrWriter())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitFailure},
		{"exit_error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "bad config", errors.New("x"))), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestIsReported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"exit_error", NewExitError(ExitCommandError, "bad flag"), false},
		{"reported", reported(NewExitError(ExitFailure, "could not load categories")), true},
		{"wrapped_reported", fmt.Errorf("outer: %w", reported(NewExitError(ExitFailure, "x"))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReported(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	inner := errors.New("no such table")
	err := WrapExitError(ExitFailure, "failed to open cart store", inner)

	assert.Equal(t, "failed to open cart store: no such table", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
}
