package action

import (
	"fmt"
	"strings"
)

// Kind is the value type of a parameter.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindColor // CSS color string or [r, g, b(, a)] array
	KindJSON  // any JSON value
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindColor:
		return "color"
	case KindJSON:
		return "JSON"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range is an inclusive numeric range.
type Range struct {
	Min, Max float64
}

// Param declares one positional argument or named option.
type Param struct {
	// Name is the lower-case identifier used in pipeline steps and, for
	// options, as the long flag name.
	Name string

	Kind Kind

	// Default is used when no value is supplied. A positional without a
	// default is required. For a repeated parameter Default is the per-slot
	// default.
	Default any

	// Range, when set, bounds numeric values.
	Range *Range

	// Choices, when set, lists the accepted string values.
	Choices []string

	// Repeated marks a variadic positional (which must be the last one) or an
	// option that may be given several times.
	Repeated bool

	// PairedWith names the repeated positional whose occurrences this
	// repeated option is paired with.
	PairedWith string

	// Shorthand is the one-letter flag alias of an option.
	Shorthand string

	// Parse, when set, replaces the conversion of Kind. Its error becomes the
	// reason in the "Invalid value" message.
	Parse func(raw any) (any, error)

	Usage string
}

// Required reports whether a positional must be supplied. A repeated
// positional without a default needs at least one value.
func (p *Param) Required() bool {
	return p.Default == nil
}

// Spec is the parameter contract of an action.
type Spec struct {
	Name  string
	Short string
	Long  string

	// Args are the positional arguments after the image, in order.
	Args []Param

	// Options are the named options.
	Options []Param
}

// Reserved names that belong to the command surface rather than to actions.
const (
	ReservedOutput = "output"
	ReservedFormat = "format"
)

// Param looks up a positional or option by name.
func (s *Spec) Param(name string) (*Param, bool) {
	for i := range s.Args {
		if s.Args[i].Name == name {
			return &s.Args[i], true
		}
	}
	for i := range s.Options {
		if s.Options[i].Name == name {
			return &s.Options[i], true
		}
	}
	return nil, false
}

// IsArg reports whether name is a positional argument.
func (s *Spec) IsArg(name string) bool {
	for i := range s.Args {
		if s.Args[i].Name == name {
			return true
		}
	}
	return false
}

// Variadic returns the repeated positional, if any.
func (s *Spec) Variadic() (*Param, bool) {
	if n := len(s.Args); n > 0 && s.Args[n-1].Repeated {
		return &s.Args[n-1], true
	}
	return nil, false
}

// Paired returns the options paired with the positional named arg.
func (s *Spec) Paired(arg string) []*Param {
	var out []*Param
	for i := range s.Options {
		if s.Options[i].PairedWith == arg {
			out = append(out, &s.Options[i])
		}
	}
	return out
}

// Validate checks the internal consistency of a spec.
func (s *Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("action name is empty")
	}

	seen := map[string]bool{}
	shorts := map[string]bool{"o": true, "h": true}
	check := func(p *Param) error {
		switch {
		case p.Name == "":
			return fmt.Errorf("action %s: parameter with empty name", s.Name)
		case p.Name == ReservedOutput || p.Name == ReservedFormat:
			return fmt.Errorf("action %s: parameter name %q is reserved", s.Name, p.Name)
		case seen[p.Name]:
			return fmt.Errorf("action %s: duplicate parameter %q", s.Name, p.Name)
		case p.Range != nil && p.Kind != KindInt && p.Kind != KindFloat:
			return fmt.Errorf("action %s: range on non-numeric parameter %q", s.Name, p.Name)
		}
		seen[p.Name] = true
		return nil
	}

	optional := false
	for i := range s.Args {
		p := &s.Args[i]
		if err := check(p); err != nil {
			return err
		}
		if p.Repeated && i != len(s.Args)-1 {
			return fmt.Errorf("action %s: repeated argument %q must be last", s.Name, p.Name)
		}
		if p.Required() && optional {
			return fmt.Errorf("action %s: required argument %q follows an optional one", s.Name, p.Name)
		}
		if !p.Required() {
			optional = true
		}
		if p.Shorthand != "" || p.PairedWith != "" {
			return fmt.Errorf("action %s: argument %q cannot have a shorthand or pairing", s.Name, p.Name)
		}
	}

	for i := range s.Options {
		p := &s.Options[i]
		if err := check(p); err != nil {
			return err
		}
		if p.Shorthand != "" {
			if len(p.Shorthand) != 1 || shorts[p.Shorthand] {
				return fmt.Errorf("action %s: invalid or duplicate shorthand %q", s.Name, p.Shorthand)
			}
			shorts[p.Shorthand] = true
		}
		if p.PairedWith != "" {
			v, ok := s.Variadic()
			if !ok || v.Name != p.PairedWith || !p.Repeated {
				return fmt.Errorf("action %s: option %q must be repeated and pair with the repeated argument", s.Name, p.Name)
			}
		}
	}
	return nil
}
