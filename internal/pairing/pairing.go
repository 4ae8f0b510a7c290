// Package pairing assigns the occurrences of repeatable command-line options
// to the occurrences of a repeatable positional argument.
//
// A command such as
//
//	image-tools match a.png -t 90 b.png -f h c.png photo.png
//
// takes several templates, and every template has its own threshold and
// flip mode. The user writes an option immediately before the template it
// modifies, so -t 90 belongs to b.png and -f h to c.png; every other slot
// gets the option's default.
package pairing

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tokens is a tokenized command line.
type Tokens []string

// Window returns t[lo:hi] with slice-like semantics: negative bounds count
// from the end and out-of-range bounds are clamped.
func (t Tokens) Window(lo, hi int) Tokens {
	n := len(t)
	norm := func(i int) int {
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	lo, hi = norm(lo), norm(hi)
	if lo >= hi {
		return Tokens{}
	}
	return t[lo:hi]
}

// DefaultWindow drops the first token, the command name, and the last one,
// the trailing image argument.
func (t Tokens) DefaultWindow() Tokens {
	return t.Window(1, -1)
}

// Option is a repeatable option paired with the argument.
type Option struct {
	// Name keys the result.
	Name string

	// Flags are the spellings of the option, e.g. "-t" and "--threshold".
	Flags []string

	// Default fills the argument slots the option was not given for.
	Default string
}

// Spec describes the pairing of one command.
type Spec struct {
	// Argument names the repeatable positional argument.
	Argument string

	Options []Option

	// Switches are the spellings of flags that take no value, such as
	// "--mask". Any other flag without an inline value consumes the next
	// token.
	Switches []string
}

type occurrence struct {
	option int
	flag   string
	value  string
}

// Pair scans tokens and returns, for every option of spec, a list of
// argCount values: the value given before each argument occurrence or the
// option's default.
//
// Options written after the last argument occurrence belong to the last
// argument. Giving an option twice for the same argument is an error, as is
// giving a paired option when there are no arguments. Tokens after "--" are
// all positional.
func Pair(spec Spec, tokens Tokens, argCount int) (map[string][]string, error) {
	out := make(map[string][]string, len(spec.Options))
	assigned := make([][]bool, len(spec.Options))
	for i, opt := range spec.Options {
		list := make([]string, argCount)
		for j := range list {
			list[j] = opt.Default
		}
		out[opt.Name] = list
		assigned[i] = make([]bool, argCount)
	}

	flags := make(map[string]int)
	for i, opt := range spec.Options {
		for _, f := range opt.Flags {
			flags[f] = i
		}
	}
	switches := make(map[string]bool, len(spec.Switches))
	for _, s := range spec.Switches {
		switches[s] = true
	}

	var waiting []occurrence
	index := 0
	assign := func() error {
		if len(waiting) == 0 {
			return nil
		}
		if argCount == 0 {
			return errors.Errorf("option %s requires at least one %s argument", waiting[0].flag, spec.Argument)
		}
		slot := min(index, argCount-1)
		for _, occ := range waiting {
			if assigned[occ.option][slot] {
				return errors.Errorf("option %s given twice for %s argument %d", occ.flag, spec.Argument, slot+1)
			}
			assigned[occ.option][slot] = true
			out[spec.Options[occ.option].Name][slot] = occ.value
		}
		waiting = waiting[:0]
		return nil
	}
	record := func(flag, value string) {
		if i, ok := flags[flag]; ok {
			waiting = append(waiting, occurrence{option: i, flag: flag, value: value})
		}
	}

	pending := ""
	ended := false
	for _, tok := range tokens {
		if !ended && tok == "--" {
			ended = true
			pending = ""
			continue
		}

		if !ended && isFlag(tok) {
			pending = ""
			flag, value, inline := splitFlag(tok)
			switch {
			case switches[flag]:
			case inline:
				record(flag, value)
			default:
				pending = flag
			}
			continue
		}

		if pending != "" {
			record(pending, tok)
			pending = ""
			continue
		}

		if err := assign(); err != nil {
			return nil, err
		}
		index++
	}

	// Trailing options belong to the last argument.
	index = max(index-1, 0)
	if err := assign(); err != nil {
		return nil, err
	}
	return out, nil
}

// isFlag reports whether tok looks like an option rather than a value. A
// lone "-" and negative numbers are values.
func isFlag(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err != nil
}

// splitFlag separates the flag spelling from an inline value, as in
// "--name=value" or "-xvalue".
func splitFlag(tok string) (flag, value string, inline bool) {
	if strings.HasPrefix(tok, "--") {
		if i := strings.IndexByte(tok, '='); i >= 0 {
			return tok[:i], tok[i+1:], true
		}
		return tok, "", false
	}
	if len(tok) > 2 {
		return tok[:2], strings.TrimPrefix(tok[2:], "="), true
	}
	return tok, "", false
}
