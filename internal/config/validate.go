package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// IssueSeverity is the severity of a configuration finding.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one finding. Path is a dotted path into the file, e.g.
// "sinks[1].table".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// sqlKinds need a table; "csv" does not.
var sqlKinds = map[string]bool{"sqlite": true, "postgres": true, "mssql": true, "mysql": true}

// ValidatePipeline lints p without modifying it.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue
	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels logs and metrics"})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateSinks(p.Sinks)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateLogging(p.Logging)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.path", "file source requires a non-empty path"})
		}
	case "http":
		u := strings.TrimSpace(s.HTTP.URL)
		if u == "" {
			issues = append(issues, Issue{SeverityError, "source.http.url", "http source requires a url"})
		} else if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{SeverityError, "source.http.url", fmt.Sprintf("url %q must start with http:// or https://", u)})
		}
		durations := []struct{ name, v string }{
			{"timeout", s.HTTP.Timeout},
			{"initial_backoff", s.HTTP.InitialBackoff},
			{"max_backoff", s.HTTP.MaxBackoff},
		}
		for _, d := range durations {
			if d.v == "" {
				continue
			}
			if _, err := time.ParseDuration(d.v); err != nil {
				issues = append(issues, Issue{SeverityError, "source.http." + d.name, fmt.Sprintf("invalid duration %q", d.v)})
			}
		}
		if s.HTTP.MaxRetries < 0 {
			issues = append(issues, Issue{SeverityError, "source.http.max_retries", "max_retries must not be negative"})
		}
		if s.HTTP.InsecureSkipVerify {
			issues = append(issues, Issue{SeverityWarning, "source.http.insecure_skip_verify", "TLS verification is disabled"})
		}
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q (want file or http)", s.Kind)})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if p.Kind != "" && p.Kind != "csv" {
		return append(issues, Issue{SeverityError, "parser.kind", fmt.Sprintf("unknown parser kind %q (only csv is supported)", p.Kind)})
	}
	if p.Options.Has("comma") {
		if c := p.Options.String("comma", ""); utf8.RuneCountInString(c) != 1 {
			issues = append(issues, Issue{SeverityError, "parser.options.comma", fmt.Sprintf("comma must be a single character, got %q", c)})
		}
	}
	if p.Options.Int("expected_fields", 0) < 0 {
		issues = append(issues, Issue{SeverityError, "parser.options.expected_fields", "expected_fields must not be negative"})
	}
	if p.Options.Has("replacements") {
		reps := p.Options.MapSlice("replacements")
		if reps == nil {
			issues = append(issues, Issue{SeverityError, "parser.options.replacements", "replacements must be an array of {from, to} objects"})
		}
		for i, r := range reps {
			if r == nil || r["from"] == "" {
				issues = append(issues, Issue{SeverityError, fmt.Sprintf("parser.options.replacements[%d]", i), "from must be a non-empty string"})
			}
		}
	}
	if p.Options.Has("null_tokens") && len(p.Options.StringSlice("null_tokens")) == 0 {
		issues = append(issues, Issue{SeverityWarning, "parser.options.null_tokens", "empty null_tokens disables missing-value detection"})
	}
	return issues
}

func validateSinks(sinks []Sink) []Issue {
	var issues []Issue
	if len(sinks) == 0 {
		return append(issues, Issue{SeverityError, "sinks", "at least one sink is required"})
	}
	seen := make(map[string]int, len(sinks))
	for i, s := range sinks {
		path := fmt.Sprintf("sinks[%d]", i)
		switch {
		case s.Kind == "":
			issues = append(issues, Issue{SeverityError, path + ".kind", "sink kind must not be empty"})
			continue
		case s.Kind != "csv" && !sqlKinds[s.Kind]:
			issues = append(issues, Issue{SeverityError, path + ".kind", fmt.Sprintf("unknown sink kind %q", s.Kind)})
			continue
		}
		if strings.TrimSpace(s.DSN) == "" {
			issues = append(issues, Issue{SeverityError, path + ".dsn", "dsn must not be empty"})
		}
		if sqlKinds[s.Kind] && strings.TrimSpace(s.Table) == "" {
			issues = append(issues, Issue{SeverityError, path + ".table", fmt.Sprintf("%s sink requires a table", s.Kind)})
		}
		if s.Kind == "csv" {
			if s.Table != "" {
				issues = append(issues, Issue{SeverityWarning, path + ".table", "csv sink ignores table"})
			}
			if s.AutoCreateTable {
				issues = append(issues, Issue{SeverityWarning, path + ".auto_create_table", "csv sink ignores auto_create_table"})
			}
		}
		if s.BatchSize < 0 {
			issues = append(issues, Issue{SeverityError, path + ".batch_size", "batch_size must not be negative"})
		}
		key := s.Kind + "|" + s.DSN + "|" + s.Table
		if j, dup := seen[key]; dup {
			issues = append(issues, Issue{SeverityError, path, fmt.Sprintf("duplicates sinks[%d]", j)})
		} else {
			seen[key] = i
		}
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	if r.BatchSize <= 0 {
		return []Issue{{SeverityWarning, "runtime.batch_size", fmt.Sprintf("batch_size=%d; the loader default of 500 applies", r.BatchSize)}}
	}
	return nil
}

func validateLogging(l Logging) []Issue {
	var issues []Issue
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		issues = append(issues, Issue{SeverityError, "logging.level", fmt.Sprintf("unknown level %q", l.Level)})
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{SeverityError, "logging.format", fmt.Sprintf("unknown format %q (want text or json)", l.Format)})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "prometheus":
		if m.PushgatewayURL == "" {
			return []Issue{{SeverityError, "metrics.pushgateway_url", "prometheus backend requires pushgateway_url"}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr"}}
		}
	default:
		return []Issue{{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", m.Backend)}}
	}
	return nil
}
