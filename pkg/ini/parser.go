package ini

import (
	"strings"

	"extframe/pkg/diag"
)

// Severity classifies a configuration diagnostic.
type Severity string

const (
	// SeverityParse marks a value that could not be interpreted.
	SeverityParse Severity = "parse"
	// SeverityResource marks a value naming a resource that was not found.
	SeverityResource Severity = "resource"
)

// Diagnostic is a single configuration complaint.
type Diagnostic struct {
	Severity Severity
	Section  string
	Key      string
	Value    string
	Reason   string
}

// Parser mediates between attribute cells and a Source. It trims values,
// treats empty values as absent and reports each bad value once.
type Parser struct {
	src      Source
	logger   diag.Logger
	metrics  diag.MetricsRecorder
	reported map[string]struct{}
	diags    []Diagnostic
}

// ParserOption customises a Parser.
type ParserOption func(*Parser)

// WithLogger routes diagnostics to logger.
func WithLogger(logger diag.Logger) ParserOption {
	return func(p *Parser) { p.logger = diag.LoggerOrNop(logger) }
}

// WithMetricsRecorder counts diagnostics on recorder.
func WithMetricsRecorder(recorder diag.MetricsRecorder) ParserOption {
	return func(p *Parser) { p.metrics = diag.MetricsOrNop(recorder) }
}

// NewParser wraps src.
func NewParser(src Source, opts ...ParserOption) *Parser {
	p := &Parser{
		src:      src,
		logger:   diag.NopLogger{},
		metrics:  diag.NopMetrics{},
		reported: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Source returns the wrapped source.
func (p *Parser) Source() Source { return p.src }

// Read returns the trimmed value of section/key. Absent and empty values
// both report false.
func (p *Parser) Read(section, key string) (string, bool) {
	if p == nil || p.src == nil {
		return "", false
	}
	v, ok := p.src.Get(section, key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ParseFailed records that value could not be parsed for section/key.
// Repeated reports of the same triple are dropped.
func (p *Parser) ParseFailed(section, key, value, reason string) {
	p.report(Diagnostic{Severity: SeverityParse, Section: section, Key: key, Value: value, Reason: reason})
}

// MissingResource records that value names a resource that does not exist.
func (p *Parser) MissingResource(section, key, value, file string) {
	p.report(Diagnostic{Severity: SeverityResource, Section: section, Key: key, Value: value, Reason: "failed to find file " + file})
}

func (p *Parser) report(d Diagnostic) {
	id := string(d.Severity) + "\x00" + fold(d.Section) + "\x00" + fold(d.Key) + "\x00" + d.Value
	if _, dup := p.reported[id]; dup {
		return
	}
	p.reported[id] = struct{}{}
	p.diags = append(p.diags, d)
	p.metrics.ParseFailure(string(d.Severity))
	switch d.Severity {
	case SeverityResource:
		p.logger.Warn("configuration references missing resource",
			"section", d.Section, "key", d.Key, "value", d.Value, "reason", d.Reason)
	default:
		p.logger.Warn("configuration value not parsed",
			"section", d.Section, "key", d.Key, "value", d.Value, "reason", d.Reason)
	}
}

// Diagnostics returns a copy of everything reported so far.
func (p *Parser) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), p.diags...)
}
