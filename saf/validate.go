package saf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Problem is one inconsistency found in a bundle.
type Problem struct {
	Item    string
	Message string
}

func (p Problem) String() string {
	if p.Item == "" {
		return p.Message
	}
	return p.Item + ": " + p.Message
}

type dcDocument struct {
	XMLName xml.Name  `xml:"dublin_core"`
	Schema  string    `xml:"schema,attr"`
	Values  []dcValue `xml:"dcvalue"`
}

// Validate checks the items of a bundle. fsys is rooted at the bundle: pass
// os.DirFS(bundleDir) for a directory or an opened *zip.Reader for a packaged bundle.
// The returned error reports failures to read fsys, not problems with its contents.
func Validate(fsys fs.FS) ([]Problem, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var problems []Problem
	items := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "item_") {
			continue
		}
		items++
		p, err := validateItem(fsys, e.Name())
		if err != nil {
			return problems, err
		}
		problems = append(problems, p...)
	}
	if items == 0 {
		problems = append(problems, Problem{Message: "bundle contains no items"})
	}
	return problems, nil
}

func validateItem(fsys fs.FS, item string) ([]Problem, error) {
	var problems []Problem
	report := func(format string, args ...any) {
		problems = append(problems, Problem{Item: item, Message: fmt.Sprintf(format, args...)})
	}

	// Names listed in contents are bitstreams, even when they look like metadata files.
	listed := make(map[string]bool)
	contents, err := fs.ReadFile(fsys, path.Join(item, contentsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		report("missing contents file")
	case err != nil:
		return nil, err
	default:
		for _, name := range listedFiles(contents) {
			listed[path.Base(name)] = true
			if _, err := fs.Stat(fsys, path.Join(item, name)); err != nil {
				report("listed file %q is missing", name)
			}
		}
	}

	entries, err := fs.ReadDir(fsys, item)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		schema, ok := metadataSchema(name)
		if !ok || e.IsDir() || listed[name] {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(item, name))
		if err != nil {
			return nil, err
		}
		if msg := checkMetadata(data, schema); msg != "" {
			report("%s: %s", name, msg)
		}
	}
	return problems, nil
}

// listedFiles returns the file names of a contents listing, without the
// group and bundle annotations.
func listedFiles(contents []byte) []string {
	var names []string
	for _, line := range strings.Split(string(contents), "\n") {
		name, _, _ := strings.Cut(line, "\t")
		if i := strings.Index(name, "    bundle:"); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// metadataSchema maps a metadata file name to the schema it should declare.
func metadataSchema(name string) (string, bool) {
	if name == "dublin_core.xml" {
		return SchemaDublinCore, true
	}
	if strings.HasPrefix(name, "metadata_") && strings.HasSuffix(name, ".xml") {
		return strings.TrimSuffix(strings.TrimPrefix(name, "metadata_"), ".xml"), true
	}
	return "", false
}

// checkMetadata parses a metadata file and returns a description of what is wrong, if anything.
func checkMetadata(data []byte, schema string) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var doc dcDocument
	if err := dec.Decode(&doc); err != nil {
		return fmt.Sprintf("invalid XML: %v", err)
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Sprintf("invalid XML after root element: %v", err)
		}
		if cd, ok := tok.(xml.CharData); ok && len(bytes.TrimSpace(cd)) == 0 {
			continue
		}
		return "unexpected content after root element"
	}

	want := schema
	if schema == SchemaDublinCore {
		want = ""
	}
	if doc.Schema != want {
		return fmt.Sprintf("schema attribute %q, want %q", doc.Schema, want)
	}
	for _, v := range doc.Values {
		if v.Element == "" {
			return "dcvalue without element attribute"
		}
	}
	return ""
}
