// Package diag implements the typed, severity-tagged diagnostic sink every
// front-end stage (lexer, parser, later passes) reports into. Diagnostics are
// recorded, not thrown: the sink's counters, not a propagated error, decide
// whether a later pipeline stage should run.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInternal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Kind is the diagnostic taxonomy from the spec: syntax, semantic, resource,
// and VM-runtime diagnostics all flow through the same sink.
type Kind int

const (
	KindSyntax Kind = iota
	KindSemantic
	KindResource
	KindVMRuntime
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	case KindResource:
		return "resource"
	case KindVMRuntime:
		return "vm-runtime"
	default:
		return "unknown"
	}
}

// Location is a source position derived from a token index, resolved lazily
// by whoever owns the token store (the sink itself never touches TSTORE).
type Location struct {
	File string
	Line int
}

// Diagnostic is one recorded report.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Stage    string
	Code     int
	Location Location
	Message  string
	Hint     string
	Extra    error // optional wrapped cause, e.g. an underlying store I/O error
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Location.File != "" {
		loc = fmt.Sprintf("%s:%d: ", d.Location.File, d.Location.Line)
	}
	s := fmt.Sprintf("%s%s[%s %s C%04d]: %s", loc, d.Severity, d.Stage, d.Kind, d.Code, d.Message)
	if d.Hint != "" {
		s += " (hint: " + d.Hint + ")"
	}
	return s
}

// Config bounds the sink's behavior.
type Config struct {
	MaxErrors   int
	MaxWarnings int
	Output      io.Writer
	Logger      *zap.SugaredLogger // optional; nil is valid
}

// DefaultConfig matches the caps documented in spec.md.
func DefaultConfig() Config {
	return Config{
		MaxErrors:   100,
		MaxWarnings: 200,
		Output:      os.Stderr,
	}
}

// Sink collects diagnostics. Every recorded diagnostic is tallied even past
// the configured caps; only the stored, renderable slice is capped.
type Sink struct {
	cfg Config

	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
	internalCnt int
}

// New creates a sink. A zero Config is valid and behaves like DefaultConfig
// except with no output writer (PrintSummary becomes a no-op).
func New(cfg Config) *Sink {
	if cfg.MaxErrors == 0 && cfg.MaxWarnings == 0 {
		def := DefaultConfig()
		cfg.MaxErrors = def.MaxErrors
		cfg.MaxWarnings = def.MaxWarnings
	}
	return &Sink{cfg: cfg}
}

// Report records a diagnostic. Once the severity's cap is hit, further
// diagnostics of that severity are discarded from the renderable list but
// the tally keeps incrementing, per spec.md §7.
func (s *Sink) Report(d Diagnostic) {
	switch d.Severity {
	case SeverityWarning:
		s.warnCount++
		if s.warnCount > s.cfg.MaxWarnings {
			s.logDropped(d)
			return
		}
	case SeverityInternal:
		s.internalCnt++
	default:
		s.errorCount++
		if s.errorCount > s.cfg.MaxErrors {
			s.logDropped(d)
			return
		}
	}
	s.diagnostics = append(s.diagnostics, d)
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debugw("diagnostic recorded",
			"severity", d.Severity.String(), "kind", d.Kind.String(),
			"stage", d.Stage, "code", d.Code, "message", d.Message)
	}
}

func (s *Sink) logDropped(d Diagnostic) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Warnw("diagnostic dropped: cap exceeded",
			"severity", d.Severity.String(), "stage", d.Stage, "code", d.Code)
	}
}

// Syntaxf records a syntax-kind error at the given stage/code/location.
func (s *Sink) Syntaxf(stage string, code int, loc Location, format string, args ...any) {
	s.Report(Diagnostic{Severity: SeverityError, Kind: KindSyntax, Stage: stage, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Semanticf records a semantic-kind error.
func (s *Sink) Semanticf(stage string, code int, loc Location, format string, args ...any) {
	s.Report(Diagnostic{Severity: SeverityError, Kind: KindSemantic, Stage: stage, Code: code, Location: loc, Message: fmt.Sprintf(format, args...)})
}

// Resource records a resource-class error, escalated from a store-level ERR
// return per the spec.md §7 propagation policy. cause is wrapped with
// github.com/pkg/errors so the original stack is inspectable.
func (s *Sink) Resource(stage string, code int, loc Location, message string, cause error) {
	var wrapped error
	if cause != nil {
		wrapped = errors.Wrap(cause, message)
	}
	s.Report(Diagnostic{Severity: SeverityError, Kind: KindResource, Stage: stage, Code: code, Location: loc, Message: message, Extra: wrapped})
}

// VMRuntime records a VM-fault diagnostic.
func (s *Sink) VMRuntime(stage string, code int, message string) {
	s.Report(Diagnostic{Severity: SeverityError, Kind: KindVMRuntime, Stage: stage, Code: code, Message: message})
}

// HasErrors reports whether any error- or internal-severity diagnostic has
// been recorded (warnings alone never fail a build).
func (s *Sink) HasErrors() bool {
	return s.errorCount > 0 || s.internalCnt > 0
}

// ErrorCount, WarningCount return the raw tallies (including diagnostics
// dropped once a cap was exceeded).
func (s *Sink) ErrorCount() int   { return s.errorCount }
func (s *Sink) WarningCount() int { return s.warnCount }

// Diagnostics returns the retained (un-dropped) diagnostics in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diagnostics }

// PrintSummary renders every retained diagnostic followed by a tally line.
func (s *Sink) PrintSummary() {
	if s.cfg.Output == nil {
		return
	}
	for _, d := range s.diagnostics {
		fmt.Fprintln(s.cfg.Output, d.String())
	}
	fmt.Fprintf(s.cfg.Output, "%d error(s), %d warning(s)\n", s.errorCount, s.warnCount)
}
