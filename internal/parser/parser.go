// Package parser defines the contract shared by input format parsers.
package parser

import (
	"io"

	"passclean/pkg/records"
)

// Parser turns an input stream into a table. skipped counts malformed rows
// that were dropped instead of failing the parse.
type Parser interface {
	Parse(r io.Reader) (t records.Table, skipped int, err error)
}
