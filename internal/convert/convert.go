// Package convert implements the file-level operations behind the CLI
// commands: JSON→TOON, TOON→JSON, and TOON reads with optional field
// extraction.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/toonvert/internal/errors"
	"github.com/mcncl/toonvert/internal/fieldpath"
	"github.com/mcncl/toonvert/internal/models"
	"github.com/mcncl/toonvert/internal/parser"
	"github.com/mcncl/toonvert/internal/toon"
)

// StdinPath is the pseudo-path that reads input from stdin (and, as an
// output path, writes to stdout).
const StdinPath = "-"

// Converter runs conversions with a fixed set of codec options.
type Converter struct {
	encodeOpts toon.EncodeOptions
	decodeOpts toon.DecodeOptions

	// Stdin is read when an input path is "-". Overridable in tests.
	Stdin io.Reader
}

// New returns a Converter using the given codec options.
func New(encodeOpts toon.EncodeOptions, decodeOpts toon.DecodeOptions) *Converter {
	return &Converter{
		encodeOpts: encodeOpts,
		decodeOpts: decodeOpts,
		Stdin:      os.Stdin,
	}
}

// EncodeFile converts a JSON file to TOON. With an empty outputPath the TOON
// text is returned; otherwise it is written to outputPath and a confirmation
// message naming the path is returned.
func (c *Converter) EncodeFile(jsonPath, outputPath string) (string, error) {
	var (
		doc models.Document
		err error
	)
	if jsonPath == StdinPath {
		doc, err = parser.Parse(c.Stdin)
	} else {
		doc, err = parser.ParseFile(jsonPath)
	}
	if err != nil {
		return "", err
	}

	text, err := toon.EncodeWithOptions(doc.Root, &c.encodeOpts)
	if err != nil {
		return "", errors.NewEncodingError("failed to encode document as TOON", err)
	}
	return c.writeResult(text, outputPath)
}

// DecodeFile converts a TOON file to pretty-printed JSON (2-space indent).
// Output handling matches EncodeFile.
func (c *Converter) DecodeFile(toonPath, outputPath string) (string, error) {
	root, err := c.decodePath(toonPath)
	if err != nil {
		return "", err
	}
	text, err := prettyJSON(root)
	if err != nil {
		return "", err
	}
	return c.writeResult(text, outputPath)
}

// ReadFile decodes a TOON file and returns the whole document as pretty
// JSON, or, when field is non-empty, the rendered value at that dotted path.
func (c *Converter) ReadFile(toonPath, field string) (string, error) {
	root, err := c.decodePath(toonPath)
	if err != nil {
		return "", err
	}
	if field == "" {
		return prettyJSON(root)
	}
	res, err := fieldpath.Resolve(root, field)
	if err != nil {
		return "", err
	}
	out, err := fieldpath.Render(res)
	if err != nil {
		return "", errors.NewExtractError("failed to render extracted value", err)
	}
	return out, nil
}

// GetField is ReadFile with a mandatory field. It exists as the distinct
// entry point for the `get` command, whose callers are shell scripts.
func (c *Converter) GetField(toonPath, field string) (string, error) {
	if strings.TrimSpace(field) == "" {
		return "", errors.NewInputError("no field path given", errors.ErrFieldRequired)
	}
	return c.ReadFile(toonPath, field)
}

// decodePath reads and decodes TOON from a file or stdin, normalizing the
// result into model types.
func (c *Converter) decodePath(toonPath string) (models.JSONValue, error) {
	raw, err := c.readInput(toonPath)
	if err != nil {
		return nil, err
	}
	v, err := toon.DecodeWithOptions(raw, &c.decodeOpts)
	if err != nil {
		return nil, errors.NewDecodingError("failed to decode TOON", err)
	}
	return parser.Normalize(v), nil
}

func (c *Converter) readInput(path string) (string, error) {
	if path == StdinPath {
		data, err := io.ReadAll(c.Stdin)
		if err != nil {
			return "", errors.NewInputError("failed to read from stdin", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
		}
		return string(data), nil
	}
	if strings.TrimSpace(path) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.NewInputError(fmt.Sprintf("input file '%s' is empty", path), errors.ErrFileEmpty)
	}
	return string(data), nil
}

// writeResult returns the text as-is, or writes it to outputPath and returns
// a confirmation message. Files are created or overwritten with mode 0644 and
// contain exactly the serialized text.
func (c *Converter) writeResult(text, outputPath string) (string, error) {
	if outputPath == "" || outputPath == StdinPath {
		return text, nil
	}
	if err := os.WriteFile(outputPath, []byte(text), 0644); err != nil {
		return "", errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", outputPath), err)
	}
	return fmt.Sprintf("Wrote %s", outputPath), nil
}

// prettyJSON renders a document with 2-space indentation, sorted keys, and
// no HTML escaping.
func prettyJSON(v models.JSONValue) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", errors.NewOutputError("failed to render JSON", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
