// Package config holds the small set of tunables pdfimg reads before
// decoding: which builder renders by default, how tolerant the
// content-stream walker is of malformed operators, default log verbosity,
// and the CCITT/decode-array correctness toggles that shipped-but-wrong
// producers need disabled for. A default configuration is embedded at
// build time; callers needing a different one load a YAML override on top
// of it.
package config

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/mechiko/pdfimg/log"
)

//go:embed default.yaml
var defaultYAMLBytes []byte

// Renderer selects which builder.Builder a decode session uses when the
// caller does not pin one explicitly.
type Renderer int

const (
	RendererLite Renderer = iota
	RendererPro
)

func (r Renderer) String() string {
	if r == RendererPro {
		return "Pro"
	}
	return "Lite"
}

// configYAML is the wire shape of the YAML documents loaded by Default and
// Load; it exists separately from Configuration so a partial override only
// touches the keys it actually sets, mirroring the teacher's own
// configuration/parseConfig split.
type configYAML struct {
	DefaultRenderer       string `yaml:"defaultRenderer"`
	ContentStreamStrict   bool   `yaml:"contentStreamStrict"`
	LogVerbosity          string `yaml:"logVerbosity"`
	CCITTColumnsDefault   int    `yaml:"ccittColumnsDefault"`
	CorrectedDecode       bool   `yaml:"correctedDecode"`
	CorrectedSubByteScale bool   `yaml:"correctedSubByteScale"`
}

// Configuration is the resolved, ready-to-use configuration.
type Configuration struct {
	// DefaultRenderer selects builder.liteBuilder (per-pixel alpha) or
	// builder.proBuilder (batch alpha) when a caller doesn't pin one.
	DefaultRenderer Renderer

	// ContentStreamStrict is loaded from the YAML but not read by any
	// package: the content walker always aborts on a malformed operator
	// (an unterminated string, dict, array or inline image).
	ContentStreamStrict bool

	// LogVerbosity is one of "off", "info", "debug" and is applied to the
	// log package's named loggers via ApplyLogging.
	LogVerbosity string

	// CCITTColumnsDefault is loaded but not read by any package: when a
	// CCITTFaxDecode stream's DecodeParms omits /Columns, filter.Chain
	// always uses 1728.
	CCITTColumnsDefault int

	// CorrectedDecode is loaded but not read by any package: the builders
	// always remap samples with decode.Apply, never decode.ApplyCorrected.
	CorrectedDecode bool

	// CorrectedSubByteScale is loaded but not read by any package: the
	// builders always scale sub-byte (1/2/4-bit) samples with
	// decode.ScaleToByte, never decode.ScaleToByteCorrected.
	CorrectedSubByteScale bool
}

func rendererFromString(s string) Renderer {
	if strings.EqualFold(s, "Pro") {
		return RendererPro
	}
	return RendererLite
}

func fromYAML(y configYAML) *Configuration {
	return &Configuration{
		DefaultRenderer:       rendererFromString(y.DefaultRenderer),
		ContentStreamStrict:   y.ContentStreamStrict,
		LogVerbosity:          y.LogVerbosity,
		CCITTColumnsDefault:   y.CCITTColumnsDefault,
		CorrectedDecode:       y.CorrectedDecode,
		CorrectedSubByteScale: y.CorrectedSubByteScale,
	}
}

func unmarshalInto(y *configYAML, data []byte) error {
	if err := yaml.Unmarshal(data, y); err != nil {
		return errors.Wrap(err, "config: parsing YAML")
	}
	return nil
}

// Default returns the configuration embedded at build time.
func Default() (*Configuration, error) {
	var y configYAML
	if err := unmarshalInto(&y, defaultYAMLBytes); err != nil {
		return nil, errors.Wrap(err, "config: parsing embedded default")
	}
	return fromYAML(y), nil
}

// Load reads an override YAML document from r and layers it over the
// embedded default: keys the document doesn't set keep their default
// value, since the override is unmarshaled into an already-defaulted
// struct rather than a zero one.
func Load(r io.Reader) (*Configuration, error) {
	var y configYAML
	if err := unmarshalInto(&y, defaultYAMLBytes); err != nil {
		return nil, errors.Wrap(err, "config: parsing embedded default")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, errors.Wrap(err, "config: reading override")
	}
	if buf.Len() > 0 {
		if err := unmarshalInto(&y, buf.Bytes()); err != nil {
			return nil, err
		}
	}
	return fromYAML(y), nil
}

// ApplyLogging wires LogVerbosity into the log package's named loggers.
// "debug" enables all four (including the noisy content-stream parse
// logger); "info" enables the info and stats loggers only (debug and
// parse are off); "off" disables all logging. Any other value is treated
// as "info".
func (c *Configuration) ApplyLogging() {
	switch strings.ToLower(c.LogVerbosity) {
	case "debug":
		log.SetDefaultLoggers()
	case "off":
		log.DisableLoggers()
	default:
		log.SetDebugLogger(nil)
		log.SetDefaultInfoLogger()
		log.SetDefaultStatsLogger()
		log.SetParseLogger(nil)
	}
}

// LoadFile is Load reading its override document from a path on disk.
func LoadFile(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: opening %s", path)
	}
	defer f.Close()
	return Load(f)
}
