package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/pkg/exprrun"
	"github.com/sandrolain/goel/pkg/ext"
	"github.com/sandrolain/goel/pkg/parser"
)

func extensionNames() string {
	return strings.Join(ext.Names(), ", ")
}

// variableFlags are the flags of commands that bind variables.
type variableFlags struct {
	file string
	set  []string
}

func (f *variableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "vars", "f", "", "YAML file of variables")
	cmd.Flags().StringArrayVarP(&f.set, "set", "s", nil, "variable assignment name=value (repeatable)")
}

func (f *variableFlags) load() (map[string]any, error) {
	return loadValues(f.file, f.set)
}

func expression(args []string) (string, error) {
	if strings.TrimSpace(args[0]) == "" {
		return "", errNoExpression
	}
	return args[0], nil
}

func writeYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func newEvaluateCommand(s *state) *cobra.Command {
	var vars variableFlags

	cmd := &cobra.Command{
		Use:     "evaluate EXPRESSION",
		Aliases: []string{"eval", "e"},
		Args:    cobra.ExactArgs(1),
		Short:   "Evaluate an expression and print the result as YAML",
		Example: `  goel evaluate 'price * qty' --set price=2.5 --set qty=4
  goel evaluate 'user.name ~ "!"' --vars vars.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := expression(args)
			if err != nil {
				return err
			}
			values, err := vars.load()
			if err != nil {
				return err
			}
			result, err := s.app.el.EvaluateContext(cmd.Context(), source, values)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), result)
		},
	}
	vars.register(cmd)
	return cmd
}

func newCompileCommand(s *state) *cobra.Command {
	var (
		vars  variableFlags
		names []string
		run   bool
	)

	cmd := &cobra.Command{
		Use:   "compile EXPRESSION",
		Args:  cobra.ExactArgs(1),
		Short: "Compile an expression to expr-lang source",
		Long: `Compile an expression to expr-lang source.

Variables bound with --vars or --set are declared automatically. With --run
the source is executed by the expr-lang virtual machine and the result is
printed as YAML instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := expression(args)
			if err != nil {
				return err
			}
			values, err := vars.load()
			if err != nil {
				return err
			}
			declared := append([]string{}, names...)
			for name := range values {
				declared = append(declared, name)
			}

			compiled, err := s.app.el.Compile(source, parser.NewNames(declared...))
			if err != nil {
				return err
			}
			if !run {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), compiled)
				return err
			}

			result, err := exprrun.Run(compiled, values)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), result)
		},
	}
	vars.register(cmd)
	cmd.Flags().StringSliceVarP(&names, "names", "n", nil, "declared variable names")
	cmd.Flags().BoolVar(&run, "run", false, "execute the compiled source")
	return cmd
}

func newParseCommand(s *state) *cobra.Command {
	var (
		names  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse EXPRESSION",
		Args:  cobra.ExactArgs(1),
		Short: "Print the syntax tree of an expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := expression(args)
			if err != nil {
				return err
			}
			parsed, err := s.app.el.Parse(source, parser.NewNames(names...))
			if err != nil {
				return err
			}
			if !asJSON {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), parsed.Nodes())
				return err
			}
			data, err := parsed.MarshalBinary()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&names, "names", "n", nil, "declared variable names")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the serialized form")
	return cmd
}

func newLintCommand(s *state) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "lint EXPRESSION",
		Args:  cobra.ExactArgs(1),
		Short: "Check the syntax of an expression",
		Long: `Check the syntax of an expression.

Without --names every variable is accepted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := expression(args)
			if err != nil {
				return err
			}
			var declared *parser.Names
			if cmd.Flags().Changed("names") {
				n := parser.NewNames(names...)
				declared = &n
			}
			if err := s.app.el.Lint(source, declared); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&names, "names", "n", nil, "declared variable names")
	return cmd
}

func newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens EXPRESSION",
		Args:  cobra.ExactArgs(1),
		Short: "Print the tokens of an expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := parser.Tokenize(args[0])
			if err != nil {
				return err
			}
			for _, token := range stream.Tokens() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), token); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newFunctionsCommand(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Args:  cobra.NoArgs,
		Short: "List the registered functions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range s.app.el.Functions() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Args:  cobra.NoArgs,
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "goel", goel.Version())
			return err
		},
	}
}
