// Package preference describes system-wide settings of the image host.
package preference

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/lllypuk/imghost/internal/domain/errs"
)

// Type is the value type of a preference.
type Type string

// Preference value types.
const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Known preference keys.
const (
	KeyJWTExpiresIn           = "jwt_expires_in"
	KeyBcryptStrength         = "bcrypt_strength"
	KeyRemoveDerivativesAfter = "remove_derivatives_after"
	KeyAllowEditing           = "allow_editing"
	KeyConversionTimeLimit    = "conversion_time_limit"
	KeyEnableTelemetry        = "enable_telemetry"
)

const (
	minBcryptStrength = 4
	maxBcryptStrength = 31
)

// timeSpanPattern accepts spans such as "15s", "7d" or "1y".
var timeSpanPattern = regexp.MustCompile(`^[0-9]+(ms|s|m|h|d|w|y)$`)

// Preference is a single typed setting.
// Value holds a string, an int64 or a bool depending on Type.
type Preference struct {
	Key   string
	Type  Type
	Value any
}

// Raw returns the value in the textual form used for storage.
func (p Preference) Raw() string {
	switch v := p.Value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

type definition struct {
	typ      Type
	def      any
	validate func(any) error
}

var definitions = map[string]definition{
	KeyJWTExpiresIn:           {typ: TypeString, def: "7d", validate: validateTimeSpan},
	KeyBcryptStrength:         {typ: TypeNumber, def: int64(12), validate: validateBcryptStrength},
	KeyRemoveDerivativesAfter: {typ: TypeString, def: "7d", validate: validateTimeSpan},
	KeyAllowEditing:           {typ: TypeBoolean, def: true},
	KeyConversionTimeLimit:    {typ: TypeString, def: "15s", validate: validateTimeSpan},
	KeyEnableTelemetry:        {typ: TypeBoolean, def: true},
}

// Keys returns all known keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsKnown reports whether key is a known preference.
func IsKnown(key string) bool {
	_, ok := definitions[key]
	return ok
}

// Default returns the default preference for key.
func Default(key string) (Preference, error) {
	d, ok := definitions[key]
	if !ok {
		return Preference{}, fmt.Errorf("%w: unknown preference %q", errs.ErrNotFound, key)
	}
	return Preference{Key: key, Type: d.typ, Value: d.def}, nil
}

// Defaults returns every preference with its default value, sorted by key.
func Defaults() []Preference {
	keys := Keys()
	out := make([]Preference, 0, len(keys))
	for _, k := range keys {
		d := definitions[k]
		out = append(out, Preference{Key: k, Type: d.typ, Value: d.def})
	}
	return out
}

// Validate parses raw according to the type of key.
func Validate(key, raw string) (Preference, error) {
	d, ok := definitions[key]
	if !ok {
		return Preference{}, fmt.Errorf("%w: unknown preference %q", errs.ErrNotFound, key)
	}

	value, err := parse(d.typ, strings.TrimSpace(raw))
	if err != nil {
		return Preference{}, fmt.Errorf("%w: %s: %w", errs.ErrInvalidInput, key, err)
	}
	if d.validate != nil {
		if err = d.validate(value); err != nil {
			return Preference{}, fmt.Errorf("%w: %s: %w", errs.ErrInvalidInput, key, err)
		}
	}

	return Preference{Key: key, Type: d.typ, Value: value}, nil
}

func parse(typ Type, raw string) (any, error) {
	switch typ {
	case TypeString:
		return raw, nil
	case TypeNumber:
		return strconv.ParseInt(raw, 10, 64)
	case TypeBoolean:
		return strconv.ParseBool(raw)
	default:
		return nil, fmt.Errorf("unsupported type %q", typ)
	}
}

func validateTimeSpan(v any) error {
	s, _ := v.(string)
	if !timeSpanPattern.MatchString(s) {
		return fmt.Errorf("%q is not a time span", s)
	}
	return nil
}

func validateBcryptStrength(v any) error {
	n, _ := v.(int64)
	if n < minBcryptStrength || n > maxBcryptStrength {
		return fmt.Errorf("must be between %d and %d", minBcryptStrength, maxBcryptStrength)
	}
	return nil
}

// Repository stores preferences that differ from their defaults.
type Repository interface {
	// FindAll returns stored values keyed by preference key.
	FindAll(ctx context.Context) (map[string]string, error)
	// Find returns errs.ErrNotFound when nothing is stored for key.
	Find(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, raw string) error
}
