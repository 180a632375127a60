package backup

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a serialization format for Export and Import.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for unsupported formats.
var ErrUnknownFormat = errors.New("unknown backup format")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat maps a name such as "yml" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
}

// FormatFromPath picks a Format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatJSON
	}
	return f
}

// Export writes b to w in the given format.
func Export(w io.Writer, b BookmarkBackup, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(b, "", "  ")
		data = append(data, '\n')
	case FormatYAML, FormatTOML:
		var generic any
		generic, err = toGeneric(b)
		if err != nil {
			break
		}
		if format == FormatYAML {
			data, err = yaml.Marshal(generic)
		} else {
			data, err = toml.Marshal(generic)
		}
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "encoding backup as %s", format)
	}

	_, err = w.Write(data)
	return errors.Wrap(err, "writing backup")
}

// Import reads a backup in the given format from r and validates it.
func Import(r io.Reader, format Format) (BookmarkBackup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return BookmarkBackup{}, errors.Wrap(err, "reading backup")
	}

	if format != FormatJSON {
		var generic any
		switch format {
		case FormatYAML:
			err = yaml.Unmarshal(data, &generic)
		case FormatTOML:
			err = toml.Unmarshal(data, &generic)
		default:
			return BookmarkBackup{}, errors.Wrapf(ErrUnknownFormat, "%q", format)
		}
		if err != nil {
			return BookmarkBackup{}, errors.Wrapf(err, "decoding %s backup", format)
		}
		if data, err = json.Marshal(generic); err != nil {
			return BookmarkBackup{}, errors.Wrapf(err, "converting %s backup", format)
		}
	}

	var b BookmarkBackup
	if err := json.Unmarshal(data, &b); err != nil {
		return BookmarkBackup{}, errors.Wrap(err, "decoding backup")
	}
	if err := b.Validate(); err != nil {
		return BookmarkBackup{}, err
	}
	return b, nil
}

// toGeneric converts b into maps and slices with integral numbers kept as
// int64, which YAML and TOML encode without exponents.
func toGeneric(b BookmarkBackup) (any, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalizeNumbers(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = normalizeNumbers(e)
		}
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil && !math.IsInf(f, 0) {
			return f
		}
		return v.String()
	default:
		return v
	}
}
