// Package targets encodes browser version constraints into the packed form
// consumed by the CSS transform step.
package targets

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// BrowserVersion is one of Major, MajorSingle, MajorMinor or
// MajorMinorPatch. Every shape normalizes to a (major, minor, patch) triple.
type BrowserVersion interface {
	Triple() (major, minor, patch uint32)
}

// Major is a bare major version: `chrome: 95`.
type Major uint32

// MajorSingle is a one-element list: `chrome: [95]`.
type MajorSingle [1]uint32

// MajorMinor is a two-element list: `safari: [15, 4]`.
type MajorMinor [2]uint32

// MajorMinorPatch is a three-element list: `firefox: [91, 0, 1]`.
type MajorMinorPatch [3]uint32

func (v Major) Triple() (uint32, uint32, uint32)           { return uint32(v), 0, 0 }
func (v MajorSingle) Triple() (uint32, uint32, uint32)     { return v[0], 0, 0 }
func (v MajorMinor) Triple() (uint32, uint32, uint32)      { return v[0], v[1], 0 }
func (v MajorMinorPatch) Triple() (uint32, uint32, uint32) { return v[0], v[1], v[2] }

func (v Major) MarshalYAML() (any, error)           { return uint32(v), nil }
func (v MajorSingle) MarshalYAML() (any, error)     { return v[:], nil }
func (v MajorMinor) MarshalYAML() (any, error)      { return v[:], nil }
func (v MajorMinorPatch) MarshalYAML() (any, error) { return v[:], nil }

// Encode packs a version into 24 bits, one byte per component. Components
// are truncated to their low byte.
func Encode(v BrowserVersion) uint32 {
	major, minor, patch := v.Triple()
	return (major&0xff)<<16 | (minor&0xff)<<8 | patch&0xff
}

// Browsers holds the optional per-family version constraints.
type Browsers struct {
	Android BrowserVersion `koanf:"android" yaml:"android,omitempty"`
	Chrome  BrowserVersion `koanf:"chrome" yaml:"chrome,omitempty"`
	Edge    BrowserVersion `koanf:"edge" yaml:"edge,omitempty"`
	Firefox BrowserVersion `koanf:"firefox" yaml:"firefox,omitempty"`
	IE      BrowserVersion `koanf:"ie" yaml:"ie,omitempty"`
	IOSSaf  BrowserVersion `koanf:"ios_saf" yaml:"ios_saf,omitempty"`
	Opera   BrowserVersion `koanf:"opera" yaml:"opera,omitempty"`
	Safari  BrowserVersion `koanf:"safari" yaml:"safari,omitempty"`
	Samsung BrowserVersion `koanf:"samsung" yaml:"samsung,omitempty"`
}

// Targets is the encoded form of Browsers. A nil field means "no
// constraint", which is different from version 0.
type Targets struct {
	Android *uint32
	Chrome  *uint32
	Edge    *uint32
	Firefox *uint32
	IE      *uint32
	IOSSaf  *uint32
	Opera   *uint32
	Safari  *uint32
	Samsung *uint32
}

// Encode encodes each family independently.
func (b Browsers) Encode() Targets {
	return Targets{
		Android: encodeOptional(b.Android),
		Chrome:  encodeOptional(b.Chrome),
		Edge:    encodeOptional(b.Edge),
		Firefox: encodeOptional(b.Firefox),
		IE:      encodeOptional(b.IE),
		IOSSaf:  encodeOptional(b.IOSSaf),
		Opera:   encodeOptional(b.Opera),
		Safari:  encodeOptional(b.Safari),
		Samsung: encodeOptional(b.Samsung),
	}
}

func encodeOptional(v BrowserVersion) *uint32 {
	if v == nil {
		return nil
	}
	encoded := Encode(v)
	return &encoded
}

var browserVersionType = reflect.TypeOf((*BrowserVersion)(nil)).Elem()

// DecodeHook converts raw manifest values into BrowserVersion shapes.
func DecodeHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != browserVersionType {
			return data, nil
		}
		return ParseVersion(data)
	}
}

// ParseVersion builds a BrowserVersion from a decoded manifest value: a
// number, a list of one to three numbers, or a dotted string such as
// "15.4" (environment overrides arrive as strings).
func ParseVersion(data any) (BrowserVersion, error) {
	switch v := data.(type) {
	case BrowserVersion:
		return v, nil
	case string:
		return parseDotted(v)
	case []any:
		parts := make([]uint32, 0, len(v))
		for _, item := range v {
			c, err := component(item)
			if err != nil {
				return nil, err
			}
			parts = append(parts, c)
		}
		return fromParts(parts)
	case []int:
		parts := make([]uint32, 0, len(v))
		for _, item := range v {
			c, err := component(item)
			if err != nil {
				return nil, err
			}
			parts = append(parts, c)
		}
		return fromParts(parts)
	default:
		c, err := component(data)
		if err != nil {
			return nil, err
		}
		return Major(c), nil
	}
}

func parseDotted(s string) (BrowserVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty browser version")
	}

	fields := strings.Split(s, ".")
	if len(fields) == 1 {
		c, err := component(fields[0])
		if err != nil {
			return nil, err
		}
		return Major(c), nil
	}

	parts := make([]uint32, 0, len(fields))
	for _, f := range fields {
		c, err := component(f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}
	return fromParts(parts)
}

func fromParts(parts []uint32) (BrowserVersion, error) {
	switch len(parts) {
	case 1:
		return MajorSingle{parts[0]}, nil
	case 2:
		return MajorMinor{parts[0], parts[1]}, nil
	case 3:
		return MajorMinorPatch{parts[0], parts[1], parts[2]}, nil
	default:
		return nil, fmt.Errorf("browser version must have 1 to 3 components, got %d", len(parts))
	}
}

func component(data any) (uint32, error) {
	switch v := data.(type) {
	case int:
		return fromInt64(int64(v))
	case int64:
		return fromInt64(v)
	case int32:
		return fromInt64(int64(v))
	case uint:
		return uint32(v), nil
	case uint8:
		return uint32(v), nil
	case uint32:
		return v, nil
	case uint64:
		return uint32(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("browser version component %v is not an integer", v)
		}
		return fromInt64(int64(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("browser version component %q: %w", v, err)
		}
		return fromInt64(n)
	default:
		return 0, fmt.Errorf("unsupported browser version value %v (%T)", data, data)
	}
}

func fromInt64(n int64) (uint32, error) {
	if n < 0 {
		return 0, fmt.Errorf("browser version component %d is negative", n)
	}
	return uint32(n), nil
}
