package saf

import (
	"fmt"
	"strings"
)

const (
	// SchemaFilename marks the column listing payload files.
	SchemaFilename = "filename"
	// SchemaDublinCore marks Dublin Core columns, written to dublin_core.xml.
	SchemaDublinCore = "dc"

	// ValueSeparator delimits multiple values within one cell.
	ValueSeparator = "||"
)

// Field is a parsed column header of the form schema.element[.qualifier].
type Field struct {
	Schema    string
	Element   string
	Qualifier string
}

// String reassembles the dotted header.
func (f Field) String() string {
	parts := []string{f.Schema}
	if f.Element != "" {
		parts = append(parts, f.Element)
	}
	if f.Qualifier != "" {
		parts = append(parts, f.Qualifier)
	}
	return strings.Join(parts, ".")
}

// IsPayload reports whether the column lists payload file names.
func (f Field) IsPayload() bool {
	return f.Schema == SchemaFilename
}

// MetadataFile returns the name of the XML file holding values of this field's schema.
func (f Field) MetadataFile() string {
	if f.Schema == SchemaDublinCore {
		return "dublin_core.xml"
	}
	return "metadata_" + f.Schema + ".xml"
}

// ParseHeader splits a dotted header into its schema, element and qualifier.
// A bare schema is accepted only for the filename column.
func ParseHeader(header string) (Field, error) {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return Field{}, fmt.Errorf("%w: empty column name", ErrMalformedHeader)
	}

	parts := strings.Split(header, ".")
	if len(parts) > 3 {
		return Field{}, fmt.Errorf("%w: %q has more than three segments", ErrMalformedHeader, header)
	}
	for _, p := range parts {
		if p == "" {
			return Field{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedHeader, header)
		}
		if strings.ContainsAny(p, `/\`) {
			return Field{}, fmt.Errorf("%w: %q contains a path separator", ErrMalformedHeader, header)
		}
	}

	f := Field{Schema: parts[0]}
	if len(parts) == 1 {
		if f.Schema != SchemaFilename {
			return Field{}, fmt.Errorf("%w: %q has no element segment", ErrMalformedHeader, header)
		}
		return f, nil
	}
	f.Element = parts[1]
	if len(parts) == 3 {
		f.Qualifier = parts[2]
	}
	return f, nil
}

// ParseHeaders parses every column of a header row, reporting the first bad column by position.
func ParseHeaders(headers []string) ([]Field, error) {
	fields := make([]Field, len(headers))
	for i, h := range headers {
		f, err := ParseHeader(h)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		fields[i] = f
	}
	return fields, nil
}

// splitValues splits a cell on ValueSeparator and drops empty pieces.
func splitValues(cell string, trim bool) []string {
	var values []string
	for _, v := range strings.Split(cell, ValueSeparator) {
		if trim {
			v = strings.TrimSpace(v)
		}
		if v == "" {
			continue
		}
		values = append(values, v)
	}
	return values
}
