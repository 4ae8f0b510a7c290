package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
	"github.com/ironsheep/image-tools/internal/logging"
	"github.com/ironsheep/image-tools/internal/pairing"
	"github.com/ironsheep/image-tools/internal/pipeline"
)

const imageHelp = `
IMAGE is a local path or a file://, http:// or https:// URI. When IMAGE is
omitted or "-", one Base64-encoded image is read from standard input.`

// outputFlags holds the flags every command shares.
type outputFlags struct {
	path   string
	format string
}

func (o *outputFlags) add(flags *pflag.FlagSet) {
	flags.StringVarP(&o.path, action.ReservedOutput, "o", "", "write the result to this file instead of standard output")
	flags.StringVar(&o.format, action.ReservedFormat, "", "image format when the output file has no extension (png, jpg, gif, tiff, bmp, pbm, pgm, ppm, pam)")
}

// === Action Commands ===

func (a *App) actionCommand(act action.Action) *cobra.Command {
	spec := act.Spec()
	long := spec.Long
	if long == "" {
		long = spec.Short
	}

	var out outputFlags
	cmd := &cobra.Command{
		Use:   usageLine(spec),
		Short: spec.Short,
		Long:  long + "\n" + imageHelp,
		Args:  cobra.ArbitraryArgs,
	}
	out.add(cmd.Flags())
	values := addOptionFlags(cmd.Flags(), spec)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		positionals, loc := splitImage(spec, args)

		in := action.Input{Options: make(map[string]any)}
		for _, p := range positionals {
			in.Args = append(in.Args, p)
		}

		paired, err := a.pairOptions(cmd, spec, len(positionals))
		if err != nil {
			return err
		}
		for name, list := range paired {
			in.Options[name] = list
		}
		for name, v := range values {
			if _, ok := paired[name]; ok || !cmd.Flags().Changed(name) {
				continue
			}
			in.Options[name] = v.raw()
		}

		// Arguments are checked before the image is read.
		bound, err := action.Bind(spec, in, action.ModeStrict)
		if err != nil {
			return err
		}

		img, err := a.loadImage(cmd, loc)
		if err != nil {
			return err
		}

		logging.Debug("Applying action", "action", spec.Name, "values", bound)
		res, err := act.Apply(cmd.Context(), img, bound)
		if err != nil {
			return action.AsParameterError(err)
		}
		return a.serialize(res, img, out.path, out.format)
	}
	return cmd
}

// usageLine renders e.g. "crop X1 Y1 X2 Y2 [IMAGE]" or "match TEMPLATE... [IMAGE]".
func usageLine(spec *action.Spec) string {
	parts := []string{spec.Name}
	for _, p := range spec.Args {
		name := strings.ToUpper(p.Name)
		switch {
		case p.Repeated:
			name += "..."
		case !p.Required():
			name = "[" + name + "]"
		}
		parts = append(parts, name)
	}
	parts = append(parts, "[IMAGE]")
	return strings.Join(parts, " ")
}

// splitImage separates the trailing IMAGE from the action's arguments. IMAGE
// is present when there are more positionals than the action declares, so a
// repeated argument keeps every positional until a second one is given.
func splitImage(spec *action.Spec, args []string) ([]string, string) {
	if len(args) > len(spec.Args) {
		return args[:len(args)-1], args[len(args)-1]
	}
	return args, ""
}

// pairOptions pairs the occurrences of options declared PairedWith the
// repeated argument. The window is the raw command line after the command
// name, so the order of flags and arguments is preserved.
func (a *App) pairOptions(cmd *cobra.Command, spec *action.Spec, positionals int) (map[string][]string, error) {
	variadic, ok := spec.Variadic()
	if !ok {
		return nil, nil
	}

	ps := pairing.Spec{Argument: strings.ToUpper(variadic.Name), Switches: switches(cmd.Flags())}
	for _, p := range spec.Paired(variadic.Name) {
		opt := pairing.Option{Name: p.Name, Flags: []string{"--" + p.Name}}
		if p.Shorthand != "" {
			opt.Flags = append(opt.Flags, "-"+p.Shorthand)
		}
		if p.Default != nil {
			opt.Default = fmt.Sprint(p.Default)
		}
		ps.Options = append(ps.Options, opt)
	}
	if len(ps.Options) == 0 {
		return nil, nil
	}

	fixed := len(spec.Args) - 1
	count := max(positionals-fixed, 0)
	tokens := commandTail(cmd, a.args)

	// Pair counts every positional, so the fixed arguments take the first
	// slots and are dropped afterwards.
	lists, err := pairing.Pair(ps, tokens, fixed+count)
	if err != nil {
		return nil, action.AsParameterError(err)
	}
	if count == 0 {
		return nil, nil
	}
	for name, list := range lists {
		lists[name] = list[fixed:]
	}
	logging.Trace("Paired options", "action", spec.Name, "tokens", tokens, "values", lists)
	return lists, nil
}

// commandTail returns the raw tokens after the command name, skipping the
// values of global flags given before it.
func commandTail(cmd *cobra.Command, args []string) pairing.Tokens {
	global := cmd.Root().PersistentFlags()
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == cmd.Name() {
			return pairing.Tokens(args).Window(i+1, len(args))
		}
		if !strings.HasPrefix(tok, "--") || strings.Contains(tok, "=") {
			continue
		}
		if f := global.Lookup(strings.TrimPrefix(tok, "--")); f != nil && f.NoOptDefVal == "" {
			i++
		}
	}
	return pairing.Tokens{}
}

// loadImage resolves loc, or reads the image from standard input when loc is
// empty or "-".
func (a *App) loadImage(cmd *cobra.Command, loc string) (*imaging.Handle, error) {
	if loc != "" && loc != "-" {
		h, err := a.source.Resolve(cmd.Context(), loc)
		if err != nil {
			return nil, action.Wrap(err, `Invalid value for "IMAGE"`)
		}
		return h, nil
	}

	if f, ok := a.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, action.ParamErrorf("image", `Missing argument "IMAGE". Pass IMAGE or pipe a Base64-encoded image to standard input.`)
	}
	handles, err := imaging.ResolveStdin(a.Stdin)
	if errors.Is(err, imaging.ErrNoStdinImage) {
		return nil, action.ParamErrorf("image", `Missing argument "IMAGE". Standard input is empty.`)
	}
	if err != nil {
		return nil, action.Wrap(err, `Invalid value for "IMAGE"`)
	}
	if len(handles) > 1 {
		logging.Warn("Ignoring extra images on standard input", "count", len(handles)-1)
	}
	return handles[0], nil
}

// === Pipeline Command ===

func (a *App) pipelineCommand() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   action.PipelineName + " ACTIONS [IMAGE]",
		Short: "Run a chain of actions on IMAGE.",
		Long: `Run a chain of actions on IMAGE.

ACTIONS is a JSON list of steps, each naming an action with its positional
arguments and options:

  [{"action": "brightness", "arguments": [120]},
   {"action": "posterize", "arguments": [8], "options": {"method": "linear"}}]

Every step runs on the image produced by the previous one. Out-of-range
values are clamped. Only the last step may produce a non-image result.
` + imageHelp,
		Args: cobra.ArbitraryArgs,
	}
	out.add(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) == 0:
			return action.ParamErrorf("actions", `Missing argument "ACTIONS".`)
		case len(args) > 2:
			return action.Errorf("Got unexpected extra argument (%s).", strings.Join(args[2:], " "))
		}

		steps, err := pipeline.ParseSteps([]byte(args[0]))
		if err != nil {
			return err
		}

		loc := ""
		if len(args) == 2 {
			loc = args[1]
		}
		img, err := a.loadImage(cmd, loc)
		if err != nil {
			return err
		}

		res, err := a.executor.Run(cmd.Context(), img, steps)
		if err != nil {
			return err
		}
		return a.serialize(res, img, out.path, out.format)
	}
	return cmd
}
