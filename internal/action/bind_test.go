package action

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brightnessSpec() *Spec {
	return &Spec{
		Name: "brightness",
		Args: []Param{{Name: "value", Kind: KindInt, Range: &Range{Min: 0, Max: 200}}},
	}
}

func selectSpec() *Spec {
	return &Spec{
		Name: "select",
		Args: []Param{{Name: "color", Kind: KindColor, Repeated: true}},
		Options: []Param{
			{Name: "tolerance", Kind: KindInt, Default: 10, Range: &Range{Min: 0, Max: 100}, Repeated: true, PairedWith: "color", Shorthand: "t"},
			{Name: "mask", Kind: KindBool, Default: false},
			{Name: "method", Kind: KindString, Default: "otsu", Choices: []string{"otsu", "mean"}, Shorthand: "m"},
		},
	}
}

func TestBindStrictRangeError(t *testing.T) {
	_, err := Bind(brightnessSpec(), Input{Args: []any{"250"}}, ModeStrict)
	require.Error(t, err)
	assert.Equal(t, `Invalid value for "value": 250 is not in the valid range of 0 to 200.`, err.Error())

	var pe *ParameterError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "value", pe.Param)
}

func TestBindStrictValid(t *testing.T) {
	v, err := Bind(brightnessSpec(), Input{Args: []any{"150"}}, ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, 150, v.Int("value"))
}

func TestBindClampRange(t *testing.T) {
	v, err := Bind(brightnessSpec(), Input{Args: []any{250.0}}, ModeClamp)
	require.NoError(t, err)
	assert.Equal(t, 200, v.Int("value"))

	v, err = Bind(brightnessSpec(), Input{Args: []any{-3.0}}, ModeClamp)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Int("value"))
}

func TestBindClampHugeNumbers(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{1e300, 200},
		{1e19, 200},
		{-1e300, 0},
	}
	for _, tt := range tests {
		v, err := Bind(brightnessSpec(), Input{Args: []any{tt.raw}}, ModeClamp)
		require.NoError(t, err, "raw %g", tt.raw)
		assert.Equal(t, tt.want, v.Int("value"), "raw %g", tt.raw)
	}

	// Without a range there is nothing to clamp to, so the value is rejected.
	spec := &Spec{Name: "n", Args: []Param{{Name: "count", Kind: KindInt}}}
	_, err := Bind(spec, Input{Args: []any{1e300}}, ModeClamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a valid integer.")
}

func TestBindFloatRangeMessage(t *testing.T) {
	spec := &Spec{
		Name: "crop",
		Options: []Param{{Name: "scale", Kind: KindFloat, Default: 1.0, Range: &Range{Min: 0.1, Max: 10}}},
	}
	_, err := Bind(spec, Input{Options: map[string]any{"scale": "12.5"}}, ModeStrict)
	require.Error(t, err)
	assert.Equal(t, `Invalid value for "scale": 12.5 is not in the valid range of 0.1 to 10.`, err.Error())
}

func TestBindMissingArgument(t *testing.T) {
	_, err := Bind(brightnessSpec(), Input{}, ModeStrict)
	require.Error(t, err)
	assert.Equal(t, `Missing argument "VALUE".`, err.Error())
}

func TestBindExtraArgument(t *testing.T) {
	_, err := Bind(brightnessSpec(), Input{Args: []any{"1", "2"}}, ModeStrict)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected extra argument")
}

func TestBindInvalidInteger(t *testing.T) {
	_, err := Bind(brightnessSpec(), Input{Args: []any{"abc"}}, ModeStrict)
	require.Error(t, err)
	assert.Equal(t, `Invalid value for "value": "abc" is not a valid integer.`, err.Error())

	_, err = Bind(brightnessSpec(), Input{Args: []any{12.5}}, ModeClamp)
	require.Error(t, err)
	assert.True(t, IsParameterError(err))
}

func TestBindUnknownOption(t *testing.T) {
	_, err := Bind(brightnessSpec(), Input{Args: []any{"1"}, Options: map[string]any{"bogus": "1"}}, ModeStrict)
	require.Error(t, err)
	assert.Equal(t, `No such option: "bogus".`, err.Error())
}

func TestBindClampOptionNamesPositional(t *testing.T) {
	v, err := Bind(brightnessSpec(), Input{Options: map[string]any{"value": 120.0}}, ModeClamp)
	require.NoError(t, err)
	assert.Equal(t, 120, v.Int("value"))

	// Strict mode never accepts positionals by name.
	_, err = Bind(brightnessSpec(), Input{Options: map[string]any{"value": "120"}}, ModeStrict)
	require.Error(t, err)
}

func TestBindDuplicateValue(t *testing.T) {
	_, err := Bind(brightnessSpec(), Input{Args: []any{100.0}, Options: map[string]any{"value": 120.0}}, ModeClamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate value")
}

func TestBindChoices(t *testing.T) {
	for _, mode := range []Mode{ModeStrict, ModeClamp} {
		_, err := Bind(selectSpec(), Input{
			Args:    []any{"#ff0000"},
			Options: map[string]any{"method": "median"},
		}, mode)
		require.Error(t, err)
		assert.Equal(t, `Invalid value for "method": "median" is not one of "otsu", "mean".`, err.Error())
	}
}

func TestBindDefaults(t *testing.T) {
	v, err := Bind(selectSpec(), Input{Args: []any{"#ff0000", "#00ff00"}}, ModeStrict)
	require.NoError(t, err)

	assert.Equal(t, []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}}, v.Colors("color"))
	assert.Equal(t, []int{10, 10}, v.Ints("tolerance"))
	assert.False(t, v.Bool("mask"))
	assert.Equal(t, "otsu", v.String("method"))
}

func TestBindPairedPadding(t *testing.T) {
	v, err := Bind(selectSpec(), Input{
		Args:    []any{"#ff0000", "#00ff00", "#0000ff"},
		Options: map[string]any{"tolerance": []string{"5"}},
	}, ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10, 10}, v.Ints("tolerance"))
}

func TestBindPairedTooMany(t *testing.T) {
	_, err := Bind(selectSpec(), Input{
		Args:    []any{"#ff0000"},
		Options: map[string]any{"tolerance": []any{5.0, 6.0}},
	}, ModeClamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 2 values for 1")
}

func TestBindPairedScalarInPipeline(t *testing.T) {
	v, err := Bind(selectSpec(), Input{
		Args:    []any{[]any{255.0, 0.0, 0.0}},
		Options: map[string]any{"tolerance": 150.0},
	}, ModeClamp)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, v.Ints("tolerance"))
	assert.Equal(t, []color.NRGBA{{R: 255, A: 255}}, v.Colors("color"))
}

func TestBindRepeatedMissing(t *testing.T) {
	_, err := Bind(selectSpec(), Input{}, ModeStrict)
	require.Error(t, err)
	assert.Equal(t, `Missing argument "COLOR".`, err.Error())
}

func TestBindColorForms(t *testing.T) {
	spec := &Spec{Name: "grid", Options: []Param{{Name: "color", Kind: KindColor, Default: "#f00"}}}

	tests := []struct {
		name string
		raw  any
		want color.NRGBA
	}{
		{"default", nil, color.NRGBA{R: 255, A: 255}},
		{"hex", "#00ff00", color.NRGBA{G: 255, A: 255}},
		{"rgb function", "rgb(0,0,255)", color.NRGBA{B: 255, A: 255}},
		{"array", []any{1.0, 2.0, 3.0}, color.NRGBA{R: 1, G: 2, B: 3, A: 255}},
		{"array with alpha", []any{1.0, 2.0, 3.0, 4.0}, color.NRGBA{R: 1, G: 2, B: 3, A: 4}},
		{"array text", "[58, 36, 38]", color.NRGBA{R: 58, G: 36, B: 38, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := map[string]any{}
			if tt.raw != nil {
				opts["color"] = tt.raw
			}
			v, err := Bind(spec, Input{Options: opts}, ModeClamp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Color("color"))
		})
	}

	_, err := Bind(spec, Input{Options: map[string]any{"color": []any{1.0, 2.0}}}, ModeClamp)
	assert.Error(t, err)
	_, err = Bind(spec, Input{Options: map[string]any{"color": "not a color"}}, ModeStrict)
	assert.Error(t, err)
	_, err = Bind(spec, Input{Options: map[string]any{"color": "[1, 2"}}, ModeStrict)
	assert.Error(t, err)
}

func TestBindBoolAndJSON(t *testing.T) {
	spec := &Spec{
		Name: "x",
		Options: []Param{
			{Name: "flag", Kind: KindBool},
			{Name: "data", Kind: KindJSON},
		},
	}
	v, err := Bind(spec, Input{Options: map[string]any{"flag": "yes", "data": `{"a":[1,2]}`}}, ModeStrict)
	require.NoError(t, err)
	assert.True(t, v.Bool("flag"))
	assert.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, v.Raw("data"))

	_, err = Bind(spec, Input{Options: map[string]any{"flag": "maybe"}}, ModeStrict)
	assert.Error(t, err)
	_, err = Bind(spec, Input{Options: map[string]any{"data": "{"}}, ModeStrict)
	assert.Error(t, err)
}

func TestBindParseHook(t *testing.T) {
	spec := &Spec{
		Name: "pick",
		Options: []Param{{
			Name: "size",
			Kind: KindJSON,
			Parse: func(raw any) (any, error) {
				if s, ok := raw.(string); ok && (s == "small" || s == "large") {
					return len(s), nil
				}
				return nil, fmt.Errorf("%v is not a size.", raw)
			},
		}},
	}

	v, err := Bind(spec, Input{Options: map[string]any{"size": "large"}}, ModeStrict)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Raw("size"))

	_, err = Bind(spec, Input{Options: map[string]any{"size": "huge"}}, ModeClamp)
	require.Error(t, err)
	assert.True(t, IsParameterError(err))
	assert.Equal(t, `Invalid value for "size": huge is not a size.`, err.Error())
}
