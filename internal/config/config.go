// Package config defines the JSON pipeline file for passclean.
//
// Example:
//
//	{
//	  "job":    "titanic",
//	  "source": { "kind": "file", "file": { "path": "Titanic-Dataset.csv" } },
//	  "parser": { "kind": "csv", "options": { "trim_space": true } },
//	  "sinks": [
//	    { "kind": "csv", "dsn": "titanic_cleaned.csv" },
//	    { "kind": "sqlite", "dsn": "file:titanic.db", "table": "titanic_cleaned", "auto_create_table": true }
//	  ]
//	}
//
// Fields absent from the file keep their Default values.
package config

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"
)

// Pipeline is the top-level pipeline file.
type Pipeline struct {
	// Job labels logs and metrics.
	Job     string  `json:"job"`
	Source  Source  `json:"source"`
	Parser  Parser  `json:"parser"`
	Sinks   []Sink  `json:"sinks"`
	Runtime Runtime `json:"runtime"`
	Logging Logging `json:"logging"`
	Metrics Metrics `json:"metrics"`
}

// Source selects where the raw CSV comes from: "file" or "http".
type Source struct {
	Kind string     `json:"kind"`
	File SourceFile `json:"file"`
	HTTP SourceHTTP `json:"http"`
}

// SourceFile is the "file" source.
type SourceFile struct {
	Path string `json:"path"`
}

// SourceHTTP is the "http" source. Timeout and backoffs are Go duration
// strings such as "30s".
type SourceHTTP struct {
	URL                string            `json:"url"`
	Timeout            string            `json:"timeout"`
	MaxRetries         int               `json:"max_retries"`
	InitialBackoff     string            `json:"initial_backoff"`
	MaxBackoff         string            `json:"max_backoff"`
	Headers            map[string]string `json:"headers"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
}

// Parser selects the parser; only "csv" exists. Recognized csv options:
// comma (string), trim_space (bool), lazy_quotes (bool), expected_fields
// (int), header_map (object), null_tokens (array), skip_log_limit (int).
type Parser struct {
	Kind    string  `json:"kind"`
	Options Options `json:"options"`
}

// Sink is one destination for the cleaned table. For "csv" the DSN is the
// output path and Table is ignored.
type Sink struct {
	Kind            string `json:"kind"`
	DSN             string `json:"dsn"`
	Table           string `json:"table"`
	AutoCreateTable bool   `json:"auto_create_table"`
	// BatchSize overrides Runtime.BatchSize for this sink.
	BatchSize int `json:"batch_size"`
}

// Runtime holds run-wide knobs.
type Runtime struct {
	BatchSize int `json:"batch_size"`
	// VerifyIdempotent re-cleans the re-expressed output and fails the run if
	// that second pass is not a no-op.
	VerifyIdempotent bool `json:"verify_idempotent"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// Metrics selects the metrics backend: "none", "prometheus" or "datadog".
type Metrics struct {
	Backend        string   `json:"backend"`
	PushgatewayURL string   `json:"pushgateway_url"`
	DatadogAddr    string   `json:"datadog_addr"`
	Namespace      string   `json:"namespace"`
	Tags           []string `json:"tags"`
}

// Default returns a runnable pipeline: Titanic-Dataset.csv in the working
// directory cleaned into titanic_cleaned.csv.
func Default() Pipeline {
	return Pipeline{
		Job:     "titanic",
		Source:  Source{Kind: "file", File: SourceFile{Path: "Titanic-Dataset.csv"}},
		Parser:  Parser{Kind: "csv", Options: Options{}},
		Sinks:   []Sink{{Kind: "csv", DSN: "titanic_cleaned.csv"}},
		Runtime: Runtime{BatchSize: 500},
		Logging: Logging{Level: "info", Format: "text"},
		Metrics: Metrics{Backend: "none"},
	}
}

// BatchSizeFor returns the effective batch size for s.
func (p Pipeline) BatchSizeFor(s Sink) int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return p.Runtime.BatchSize
}

// Options is a free-form option bag with typed accessors. Values are
// coerced with cast, so "true", 1 and true all read as a true Bool.
type Options map[string]any

// String returns the value for key as a string, or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok && v != nil {
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
	}
	return def
}

// Bool returns the value for key as a bool, or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok && v != nil {
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns the value for key as an int, or def. encoding/json decodes
// numbers as float64; fractions are truncated.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok && v != nil {
		if n, err := cast.ToIntE(v); err == nil {
			return n
		}
	}
	return def
}

// Duration returns the value for key as a time.Duration ("5s", or a number
// of nanoseconds), or def.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	if v, ok := o[key]; ok && v != nil {
		if d, err := cast.ToDurationE(v); err == nil {
			return d
		}
	}
	return def
}

// Rune returns the first rune of the string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if s := o.String(key, ""); s != "" {
		return []rune(s)[0]
	}
	return def
}

// StringMap returns the object under key as map[string]string. Non-string
// values are dropped. A missing key yields an empty map.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	m, err := cast.ToStringMapE(o[key])
	if err != nil {
		return res
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			res[k] = s
		}
	}
	return res
}

// StringSlice returns the array under key as []string, or nil when the key
// is missing. An empty array yields an empty, non-nil slice.
func (o Options) StringSlice(key string) []string {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	if s == nil {
		s = []string{}
	}
	return s
}

// MapSlice returns the array of objects under key, each flattened to
// map[string]string with non-string values dropped. Entries that are not
// objects come back as nil maps so positions stay stable. A missing key or a
// non-array value yields nil.
func (o Options) MapSlice(key string) []map[string]string {
	v, ok := o[key]
	if !ok || v == nil {
		return nil
	}
	items, err := cast.ToSliceE(v)
	if err != nil {
		return nil
	}
	out := make([]map[string]string, len(items))
	for i, it := range items {
		m, err := cast.ToStringMapE(it)
		if err != nil {
			continue
		}
		out[i] = map[string]string{}
		for k, v := range m {
			if s, ok := v.(string); ok {
				out[i][k] = s
			}
		}
	}
	return out
}

// Has reports whether key is present.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// UnmarshalJSON decodes a missing or null object into an empty Options.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
