package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ironsheep/image-tools/internal/action"
)

// optionValue is the pflag.Value behind an action option. It only collects
// raw strings; checking and conversion happen when the values are bound, so
// the command line and the pipeline report errors the same way.
type optionValue struct {
	param  *action.Param
	values []string
}

var _ pflag.Value = (*optionValue)(nil)

func (v *optionValue) String() string {
	if len(v.values) > 0 {
		return strings.Join(v.values, ",")
	}
	if v.param.Default == nil {
		return ""
	}
	return fmt.Sprint(v.param.Default)
}

func (v *optionValue) Set(s string) error {
	if v.param.Repeated {
		v.values = append(v.values, s)
	} else {
		v.values = []string{s}
	}
	return nil
}

func (v *optionValue) Type() string {
	switch v.param.Kind {
	case action.KindInt:
		return "int"
	case action.KindFloat:
		return "float"
	case action.KindBool:
		return "bool"
	case action.KindColor:
		return "color"
	case action.KindJSON:
		return "json"
	}
	return "string"
}

// raw returns the value to bind: a string, or a list for repeated options.
func (v *optionValue) raw() any {
	if v.param.Repeated {
		return append([]string(nil), v.values...)
	}
	return v.values[len(v.values)-1]
}

// addOptionFlags declares a flag for every option of spec and returns the
// values by option name.
func addOptionFlags(flags *pflag.FlagSet, spec *action.Spec) map[string]*optionValue {
	values := make(map[string]*optionValue, len(spec.Options))
	for i := range spec.Options {
		p := &spec.Options[i]
		v := &optionValue{param: p}
		usage := p.Usage
		if len(p.Choices) > 0 {
			usage += " (" + strings.Join(p.Choices, ", ") + ")"
		}
		f := flags.VarPF(v, p.Name, p.Shorthand, usage)
		if p.Kind == action.KindBool {
			f.NoOptDefVal = "true"
		}
		values[p.Name] = v
	}
	return values
}

// switches lists the spellings of every flag of fs that takes no value.
func switches(fs *pflag.FlagSet) []string {
	var out []string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.NoOptDefVal == "" {
			return
		}
		out = append(out, "--"+f.Name)
		if f.Shorthand != "" {
			out = append(out, "-"+f.Shorthand)
		}
	})
	return out
}
