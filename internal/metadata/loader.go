package metadata

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/course-metadata/internal/course"
)

// Format identifies the encoding of a metadata document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// DefaultSource names the embedded document in load errors.
const DefaultSource = "embedded default"

//go:embed default.yaml
var defaultDocument []byte

var (
	// ErrUnsupportedFormat is returned when a document format cannot be determined or decoded.
	ErrUnsupportedFormat = errors.New("unsupported metadata format")
	// ErrTrailingData is returned when a source holds more than one document.
	ErrTrailingData = errors.New("unexpected data after metadata document")
	// ErrDuplicateKey is returned when a mapping repeats a key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNonStringValue is returned when the course id or a localized value is not a string.
	ErrNonStringValue = errors.New("value must be a string")
)

// LoadError describes a failure to turn a metadata source into a course record.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load course metadata from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// document is the on-disk schema shared by every supported format.
type document struct {
	CourseID          string            `yaml:"course_id" json:"course_id" hcl:"course_id,optional"`
	CourseName        map[string]string `yaml:"course_name" json:"course_name" hcl:"course_name,optional"`
	CourseDescription map[string]string `yaml:"course_description" json:"course_description" hcl:"course_description,optional"`
}

// Load reads the document at path, choosing the decoder from its extension.
func Load(path string) (*course.Metadata, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("read file: %w", err)}
	}

	return decode(path, data, format)
}

// Decode builds a course record from an in-memory document.
func Decode(data []byte, format Format) (*course.Metadata, error) {
	return decode(string(format)+" document", data, format)
}

// Default returns the course record compiled into the binary.
func Default() (*course.Metadata, error) {
	return decode(DefaultSource, defaultDocument, FormatYAML)
}

// LoadOrDefault loads path, or the embedded default when path is empty.
func LoadOrDefault(path string) (*course.Metadata, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

// FormatFromPath maps a file extension onto a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func decode(source string, data []byte, format Format) (*course.Metadata, error) {
	var (
		doc document
		err error
	)

	switch format {
	case FormatYAML:
		err = decodeYAML(data, &doc)
	case FormatJSON:
		err = decodeJSON(data, &doc)
	case FormatHCL:
		err = decodeHCL(source, data, &doc)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	m, err := course.New(doc.CourseID, doc.CourseName, doc.CourseDescription)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return m, nil
}

func decodeYAML(data []byte, doc *document) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse YAML: %w", err)
	}

	var next yaml.Node
	if err := dec.Decode(&next); !errors.Is(err, io.EOF) {
		if err != nil {
			return fmt.Errorf("parse YAML: %w", err)
		}
		return fmt.Errorf("parse YAML: %w", ErrTrailingData)
	}

	if err := checkYAMLDocument(&root); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	if err := root.Decode(doc); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func decodeJSON(data []byte, doc *document) error {
	if err := checkJSONDocument(data); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	var next json.RawMessage
	if err := dec.Decode(&next); !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse JSON: %w", ErrTrailingData)
	}
	return nil
}

func decodeHCL(source string, data []byte, doc *document) error {
	file, diags := hclparse.NewParser().ParseHCL(data, source)
	if diags.HasErrors() {
		return fmt.Errorf("parse HCL: %w", diags)
	}
	if err := checkHCLBody(file.Body); err != nil {
		return fmt.Errorf("parse HCL: %w", err)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, doc); diags.HasErrors() {
		return fmt.Errorf("decode HCL: %w", diags)
	}
	return nil
}
