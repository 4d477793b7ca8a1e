package saf

import (
	"bytes"
	"encoding/xml"
)

const (
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
	rootClose      = "</dublin_core>"
)

type dcValue struct {
	XMLName   xml.Name `xml:"dcvalue"`
	Element   string   `xml:"element,attr"`
	Qualifier string   `xml:"qualifier,attr,omitempty"`
	Value     string   `xml:",chardata"`
}

// rootOpen returns the declaration and opening root tag of a metadata file.
// Dublin Core files carry no schema attribute.
func rootOpen(schema string) string {
	if schema == SchemaDublinCore {
		return xmlDeclaration + "\n<dublin_core>\n"
	}
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	buf.WriteString("\n<dublin_core schema=\"")
	xml.EscapeText(&buf, []byte(schema))
	buf.WriteString("\">\n")
	return buf.String()
}

// valueLine formats one indented <dcvalue> record terminated by a newline.
func valueLine(f Field, value string) (string, error) {
	b, err := xml.Marshal(dcValue{Element: f.Element, Qualifier: f.Qualifier, Value: value})
	if err != nil {
		return "", err
	}
	return "  " + string(b) + "\n", nil
}
