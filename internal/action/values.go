package action

import "image/color"

// Values holds the bound, typed values of one invocation, keyed by
// parameter name. Accessors return the zero value for unknown names.
type Values map[string]any

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Int(name string) int {
	n, _ := v[name].(int)
	return n
}

func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

func (v Values) Color(name string) color.NRGBA {
	c, _ := v[name].(color.NRGBA)
	return c
}

func (v Values) Strings(name string) []string {
	s, _ := v[name].([]string)
	return s
}

func (v Values) Ints(name string) []int {
	n, _ := v[name].([]int)
	return n
}

func (v Values) Colors(name string) []color.NRGBA {
	c, _ := v[name].([]color.NRGBA)
	return c
}

// Raw returns the value as bound, for JSON parameters.
func (v Values) Raw(name string) any {
	return v[name]
}
