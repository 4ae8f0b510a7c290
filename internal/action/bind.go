package action

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/image-tools/internal/imaging"
)

// Mode selects how raw values are checked against a spec.
type Mode int

const (
	// ModeStrict is used for command-line input: values are strings and
	// numbers outside their range are rejected.
	ModeStrict Mode = iota

	// ModeClamp is used for pipeline steps: values are decoded JSON and
	// numbers outside their range are clamped.
	ModeClamp
)

// Input holds the raw values of one invocation.
type Input struct {
	// Args fill the positionals in order; a repeated positional takes the
	// rest.
	Args []any

	// Options maps a parameter name to its value. Repeated parameters take
	// a list. In ModeClamp an option may also name a positional.
	Options map[string]any
}

// Bind checks in against spec and returns the typed values of every
// parameter, with defaults filled in.
func Bind(spec *Spec, in Input, mode Mode) (Values, error) {
	raw := make(map[string]any, len(spec.Args)+len(spec.Options))

	i := 0
	for _, p := range spec.Args {
		if i >= len(in.Args) {
			break
		}
		if p.Repeated {
			raw[p.Name] = append([]any(nil), in.Args[i:]...)
			i = len(in.Args)
			break
		}
		raw[p.Name] = in.Args[i]
		i++
	}
	if i < len(in.Args) {
		return nil, Errorf("Got unexpected extra argument (%s).", formatRaw(in.Args[i]))
	}

	names := make([]string, 0, len(in.Options))
	for name := range in.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, ok := spec.Param(name)
		if !ok || (mode == ModeStrict && spec.IsArg(name)) {
			return nil, ParamErrorf(name, "No such option: %q.", name)
		}
		if _, dup := raw[p.Name]; dup {
			return nil, ParamErrorf(name, "Duplicate value for %q.", name)
		}
		raw[p.Name] = in.Options[name]
	}

	values := make(Values, len(spec.Args)+len(spec.Options))
	for i := range spec.Args {
		p := &spec.Args[i]
		v, err := p.bind(raw[p.Name], mode, true)
		if err != nil {
			return nil, err
		}
		values[p.Name] = v
	}
	for i := range spec.Options {
		p := &spec.Options[i]
		if p.PairedWith != "" {
			continue
		}
		v, err := p.bind(raw[p.Name], mode, false)
		if err != nil {
			return nil, err
		}
		values[p.Name] = v
	}

	// Paired options are padded to the length of their argument list.
	for i := range spec.Options {
		p := &spec.Options[i]
		if p.PairedWith == "" {
			continue
		}
		n := listLen(values[p.PairedWith])
		v, err := p.bindPaired(raw[p.Name], n, mode)
		if err != nil {
			return nil, err
		}
		values[p.Name] = v
	}

	return values, nil
}

// bind coerces the raw value of one parameter. Only positionals may be
// missing; options fall back to the zero value of their kind.
func (p *Param) bind(raw any, mode Mode, positional bool) (any, error) {
	if !p.Repeated {
		if raw == nil {
			if p.Default == nil && positional {
				return nil, p.missing()
			}
			return p.defaultValue()
		}
		return p.coerce(raw, mode)
	}

	items := asList(raw)
	if len(items) == 0 {
		if p.Default == nil && positional {
			return nil, p.missing()
		}
		return p.coerceList(nil, mode)
	}
	return p.coerceList(items, mode)
}

func (p *Param) bindPaired(raw any, n int, mode Mode) (any, error) {
	items := asList(raw)
	if len(items) > n {
		return nil, ParamErrorf(p.Name, "Invalid value for %q: got %d values for %d %q arguments.",
			p.Name, len(items), n, p.PairedWith)
	}
	padded := make([]any, n)
	copy(padded, items)
	return p.coerceList(padded, mode)
}

func (p *Param) missing() error {
	return ParamErrorf(p.Name, "Missing argument %q.", strings.ToUpper(p.Name))
}

func (p *Param) defaultValue() (any, error) {
	if p.Default == nil {
		return zeroValue(p.Kind), nil
	}
	return p.coerce(p.Default, ModeClamp)
}

func (p *Param) coerceList(items []any, mode Mode) (any, error) {
	var out reflectList
	switch p.Kind {
	case KindString:
		out = &stringList{}
	case KindInt:
		out = &intList{}
	case KindFloat:
		out = &floatList{}
	case KindBool:
		out = &boolList{}
	case KindColor:
		out = &colorList{}
	default:
		out = &anyList{}
	}
	for _, item := range items {
		var v any
		var err error
		if item == nil {
			v, err = p.defaultValue()
		} else {
			v, err = p.coerce(item, mode)
		}
		if err != nil {
			return nil, err
		}
		out.add(v)
	}
	return out.value(), nil
}

func (p *Param) coerce(raw any, mode Mode) (any, error) {
	var v any
	var err error
	switch {
	case p.Parse != nil:
		v, err = p.Parse(raw)
	case p.Kind == KindString:
		v, err = toString(raw)
	case p.Kind == KindInt:
		// Out-of-range numbers are clamped before conversion so huge values
		// cannot overflow int.
		if f, ok := raw.(float64); ok && mode == ModeClamp && p.Range != nil {
			raw = math.Min(math.Max(f, p.Range.Min), p.Range.Max)
		}
		v, err = toInt(raw)
	case p.Kind == KindFloat:
		v, err = toFloat(raw)
	case p.Kind == KindBool:
		v, err = toBool(raw)
	case p.Kind == KindColor:
		v, err = toColor(raw)
	case p.Kind == KindJSON:
		v, err = toJSON(raw, mode)
	default:
		err = fmt.Errorf("unknown kind %v", p.Kind)
	}
	if err != nil {
		return nil, &ParameterError{
			Param: p.Name,
			Msg:   fmt.Sprintf("Invalid value for %q: %s", p.Name, err),
			Err:   err,
		}
	}

	if len(p.Choices) > 0 {
		s, _ := v.(string)
		if !contains(p.Choices, s) {
			return nil, ParamErrorf(p.Name, "Invalid value for %q: %q is not one of %s.",
				p.Name, s, quoteAll(p.Choices))
		}
	}

	if p.Range != nil {
		v, err = p.checkRange(v, mode)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (p *Param) checkRange(v any, mode Mode) (any, error) {
	r := p.Range
	switch n := v.(type) {
	case int:
		lo, hi := int(math.Ceil(r.Min)), int(math.Floor(r.Max))
		if n >= lo && n <= hi {
			return n, nil
		}
		if mode == ModeClamp {
			return min(max(n, lo), hi), nil
		}
		return nil, ParamErrorf(p.Name, "Invalid value for %q: %d is not in the valid range of %d to %d.",
			p.Name, n, lo, hi)
	case float64:
		if n >= r.Min && n <= r.Max {
			return n, nil
		}
		if mode == ModeClamp {
			return math.Min(math.Max(n, r.Min), r.Max), nil
		}
		return nil, ParamErrorf(p.Name, "Invalid value for %q: %s is not in the valid range of %s to %s.",
			p.Name, formatFloat(n), formatFloat(r.Min), formatFloat(r.Max))
	}
	return v, nil
}

func zeroValue(k Kind) any {
	switch k {
	case KindString:
		return ""
	case KindInt:
		return 0
	case KindFloat:
		return 0.0
	case KindBool:
		return false
	case KindColor:
		return color.NRGBA{}
	}
	return nil
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return formatFloat(v), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	}
	return "", fmt.Errorf("%s is not a valid string.", formatRaw(raw))
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int(v), nil
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid integer.", formatRaw(raw))
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(f) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%s is not a valid float.", formatRaw(raw))
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true, nil
		case "0", "false", "f", "no", "n", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("%s is not a valid boolean.", formatRaw(raw))
}

func toColor(raw any) (color.NRGBA, error) {
	switch v := raw.(type) {
	case color.NRGBA:
		return v, nil
	case string:
		if s := strings.TrimSpace(v); strings.HasPrefix(s, "[") {
			var list []any
			if err := json.Unmarshal([]byte(s), &list); err == nil {
				return toColor(list)
			}
			break
		}
		c, err := imaging.ParseColor(v)
		if err == nil {
			return c, nil
		}
	case []any:
		if len(v) != 3 && len(v) != 4 {
			break
		}
		ch := [4]uint8{0, 0, 0, 255}
		for i, item := range v {
			n, err := toInt(item)
			if err != nil || n < 0 || n > 255 {
				return color.NRGBA{}, fmt.Errorf("%s is not a valid color.", formatRaw(raw))
			}
			ch[i] = uint8(n)
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%s is not a valid color.", formatRaw(raw))
}

func toJSON(raw any, mode Mode) (any, error) {
	s, ok := raw.(string)
	if !ok || mode == ModeClamp {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("%q is not valid JSON.", s)
	}
	return v, nil
}

func asList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	}
	return []any{raw}
}

func listLen(v any) int {
	switch l := v.(type) {
	case []string:
		return len(l)
	case []int:
		return len(l)
	case []float64:
		return len(l)
	case []bool:
		return len(l)
	case []color.NRGBA:
		return len(l)
	case []any:
		return len(l)
	}
	return 0
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatRaw(raw any) string {
	if s, ok := raw.(string); ok {
		return strconv.Quote(s)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return string(b)
}

func contains(list []string, s string) bool {
	for _, c := range list {
		if c == s {
			return true
		}
	}
	return false
}

func quoteAll(list []string) string {
	q := make([]string, len(list))
	for i, s := range list {
		q[i] = strconv.Quote(s)
	}
	return strings.Join(q, ", ")
}

// reflectList accumulates coerced values into a typed slice.
type reflectList interface {
	add(v any)
	value() any
}

type stringList []string

func (l *stringList) add(v any) { *l = append(*l, v.(string)) }
func (l *stringList) value() any { return []string(*l) }

type intList []int

func (l *intList) add(v any) { *l = append(*l, v.(int)) }
func (l *intList) value() any { return []int(*l) }

type floatList []float64

func (l *floatList) add(v any) { *l = append(*l, v.(float64)) }
func (l *floatList) value() any { return []float64(*l) }

type boolList []bool

func (l *boolList) add(v any) { *l = append(*l, v.(bool)) }
func (l *boolList) value() any { return []bool(*l) }

type colorList []color.NRGBA

func (l *colorList) add(v any) { *l = append(*l, v.(color.NRGBA)) }
func (l *colorList) value() any { return []color.NRGBA(*l) }

type anyList []any

func (l *anyList) add(v any) { *l = append(*l, v) }
func (l *anyList) value() any { return []any(*l) }
