package tools

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ErrInvalidInput is wrapped by every input decoding failure.
var ErrInvalidInput = errors.New("invalid tool input")

// decodeInput maps an untyped request body onto a typed tool input. Scalars are
// weakly converted ("5" -> 5) and a comma separated string becomes a list. A
// value that cannot be converted leaves the field zero so normalize applies
// the tool's default.
func decodeInput(raw map[string]any, out any) error {
	if raw == nil {
		raw = map[string]any{}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(commaSeparatedToSlice, zeroUnconvertible),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func commaSeparatedToSlice(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// zeroUnconvertible replaces values that weak typing cannot turn into the
// target scalar with the target's zero value.
func zeroUnconvertible(from reflect.Type, to reflect.Type, data any) (any, error) {
	if data == nil {
		return data, nil
	}
	zero := reflect.Zero(to).Interface()
	switch from.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if isScalar(to.Kind()) {
			return zero, nil
		}
		return data, nil
	case reflect.String:
	default:
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	var err error
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if s == "" {
			return zero, nil
		}
		_, err = strconv.ParseInt(s, 0, to.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if s == "" {
			return zero, nil
		}
		_, err = strconv.ParseUint(s, 0, to.Bits())
	case reflect.Float32, reflect.Float64:
		if s == "" {
			return zero, nil
		}
		_, err = strconv.ParseFloat(s, to.Bits())
	case reflect.Bool:
		if s == "" {
			return zero, nil
		}
		_, err = strconv.ParseBool(s)
	default:
		return data, nil
	}
	if err != nil {
		return zero, nil
	}
	return s, nil
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
