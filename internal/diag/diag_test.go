package diag_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc99/cc99/internal/diag"
)

func TestReportCapsDiscardButKeepsTallying(t *testing.T) {
	var buf bytes.Buffer
	s := diag.New(diag.Config{MaxErrors: 2, MaxWarnings: 1, Output: &buf})

	for i := 0; i < 5; i++ {
		s.Syntaxf("syntax", 100+i, diag.Location{}, "bad token %d", i)
	}
	require.Equal(t, 5, s.ErrorCount())
	assert.Len(t, s.Diagnostics(), 2, "only the first MaxErrors diagnostics are retained")
	assert.True(t, s.HasErrors())
}

func TestUnresolvedIdentifierScenario(t *testing.T) {
	s := diag.New(diag.DefaultConfig())
	s.Semanticf("semantic", 1, diag.Location{File: "a.c", Line: 1}, "undefined identifier %q", "y")
	assert.Equal(t, 1, s.ErrorCount())
	assert.Equal(t, 0, s.WarningCount())
	assert.True(t, s.HasErrors())
}

func TestResourceWrapsCause(t *testing.T) {
	s := diag.New(diag.DefaultConfig())
	cause := errors.New("sstore full")
	s.Resource("sstore", 2, diag.Location{}, "string store capacity exhausted", cause)
	require.Len(t, s.Diagnostics(), 1)
	d := s.Diagnostics()[0]
	assert.Equal(t, diag.KindResource, d.Kind)
	require.Error(t, d.Extra)
	assert.Contains(t, d.Extra.Error(), "sstore full")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	s := diag.New(diag.Config{MaxErrors: 10, MaxWarnings: 10, Output: &buf})
	s.Syntaxf("syntax", 1, diag.Location{File: "x.c", Line: 3}, "missing semicolon")
	s.PrintSummary()
	out := buf.String()
	assert.Contains(t, out, "x.c:3:")
	assert.Contains(t, out, "1 error(s), 0 warning(s)")
}
