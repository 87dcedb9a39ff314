package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sandrolain/goel"
	"github.com/sandrolain/goel/pkg/parser"
)

const (
	prompt      = "goel> "
	historyFile = ".goel_history"
)

const replHelp = `Enter an expression to evaluate it against the bound variables.

  :set name=value   bind a variable (value is YAML)
  :unset name       remove a variable
  :vars             list the bound variables
  :compile expr     print the expr-lang source of expr
  :parse expr       print the syntax tree of expr
  :tokens expr      print the tokens of expr
  :functions        list the registered functions
  :help             show this help
  exit, quit        leave (or Ctrl+D)
`

// completionWords are the keywords offered by tab completion.
var completionWords = []string{
	"and", "or", "not", "in", "not in", "matches", "contains",
	"starts with", "ends with", "true", "false", "null",
	":set", ":unset", ":vars", ":compile", ":parse", ":tokens", ":functions", ":help",
}

// session holds the variables of an interactive session and executes its
// lines.
type session struct {
	el     *goel.ExpressionLanguage
	values map[string]any
}

func newSession(el *goel.ExpressionLanguage, values map[string]any) *session {
	if values == nil {
		values = map[string]any{}
	}
	return &session{el: el, values: values}
}

// errQuit ends the session.
var errQuit = errors.New("quit")

// Execute runs one input line and writes its output. Expression and
// command failures are reported on out; only errQuit and write errors
// are returned.
func (s *session) Execute(input string, out io.Writer) error {
	line := strings.TrimSpace(input)
	switch {
	case line == "":
		return nil
	case line == "exit" || line == "quit":
		return errQuit
	case strings.HasPrefix(line, ":"):
		return s.command(line, out)
	}

	result, err := s.el.Evaluate(line, s.values)
	if err != nil {
		return report(out, err)
	}
	return s.print(out, result)
}

func (s *session) command(line string, out io.Writer) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case ":help":
		_, err := io.WriteString(out, replHelp)
		return err
	case ":set":
		values, err := loadValues("", []string{arg})
		if err != nil {
			return report(out, err)
		}
		for k, v := range values {
			s.values[k] = v
		}
		return nil
	case ":unset":
		delete(s.values, arg)
		return nil
	case ":vars":
		return s.print(out, s.values)
	case ":compile":
		source, err := s.el.Compile(arg, s.names())
		if err != nil {
			return report(out, err)
		}
		_, err = fmt.Fprintln(out, source)
		return err
	case ":parse":
		parsed, err := s.el.Parse(arg, s.names())
		if err != nil {
			return report(out, err)
		}
		_, err = fmt.Fprintln(out, parsed.Nodes())
		return err
	case ":tokens":
		stream, err := parser.Tokenize(arg)
		if err != nil {
			return report(out, err)
		}
		for _, token := range stream.Tokens() {
			if _, err := fmt.Fprintln(out, token); err != nil {
				return err
			}
		}
		return nil
	case ":functions":
		_, err := fmt.Fprintln(out, strings.Join(s.el.Functions(), " "))
		return err
	default:
		return report(out, fmt.Errorf("unknown command %s, try :help", name))
	}
}

func (s *session) names() parser.Names {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	return parser.NewNames(names...)
}

func (s *session) print(out io.Writer, v any) error {
	var buf strings.Builder
	if err := writeYAML(&buf, v); err != nil {
		return report(out, err)
	}
	_, err := io.WriteString(out, buf.String())
	return err
}

// Complete returns the completions of the word being typed at the end of
// line.
func (s *session) Complete(line string) []string {
	start := strings.LastIndexAny(line, " ([,") + 1
	head, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	candidates := append([]string{}, completionWords...)
	candidates = append(candidates, s.el.Functions()...)
	for name := range s.values {
		candidates = append(candidates, name)
	}

	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			out = append(out, head+c)
		}
	}
	sort.Strings(out)
	return out
}

func report(out io.Writer, err error) error {
	_, werr := fmt.Fprintln(out, "Error:", err)
	return werr
}

func newReplCommand(s *state) *cobra.Command {
	var vars variableFlags

	cmd := &cobra.Command{
		Use:   "repl",
		Args:  cobra.NoArgs,
		Short: "Evaluate expressions interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := vars.load()
			if err != nil {
				return err
			}
			return runRepl(newSession(s.app.el, values), cmd.OutOrStdout())
		},
	}
	vars.register(cmd)
	return cmd
}

// runRepl drives a session from the terminal with line editing, history
// and tab completion.
func runRepl(sess *session, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(sess.Complete)

	history := filepath.Join(os.TempDir(), historyFile)
	if dir, err := os.UserCacheDir(); err == nil {
		history = filepath.Join(dir, historyFile)
	}
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(history); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(out, "goel %s, type :help for commands\n", goel.Version())
	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if err := sess.Execute(input, out); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}
