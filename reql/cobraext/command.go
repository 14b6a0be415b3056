// Package cobraext provides Cobra command factories for explaining query
// failures. It isolates the github.com/spf13/cobra dependency so that users
// who only need the formatter never import it.
package cobraext

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/relux-works/reql-explain/reql"
)

type outputMode int

const (
	textOutput outputMode = iota
	jsonOutput
)

// parseOutputMode converts a string flag value to an outputMode.
// Returns an error for unrecognized values.
func parseOutputMode(s string) (outputMode, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return textOutput, nil
	case "json":
		return jsonOutput, nil
	default:
		return 0, errors.Errorf("unknown format %q: use \"text\" or \"json\"", s)
	}
}

// reportFlags are the flags shared by every command that prints a report.
type reportFlags struct {
	format string
	indent string
	marker string
}

func (f *reportFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.format, "format", "text", `Output format: "text" or "json"`)
	fs.StringVar(&f.indent, "indent", "\t", "Prefix of the query and caret lines")
	fs.StringVar(&f.marker, "marker", "^", "Character used to underline the faulting term")
}

func (f *reportFlags) reporter() (*reql.Reporter, error) {
	opts := []reql.Option{reql.WithIndent(f.indent)}
	if f.marker != "^" {
		r, size := utf8.DecodeRuneInString(f.marker)
		if size == 0 || size != len(f.marker) {
			return nil, errors.Errorf("marker must be a single character, got %q", f.marker)
		}
		opts = append(opts, reql.WithMarker(r))
	}
	return reql.NewReporter(opts...), nil
}

// errorView adds the display name to the JSON form of an error.
type errorView struct {
	*reql.Error
	Name string `json:"name"`
}

func writeError(w io.Writer, mode outputMode, e *reql.Error) error {
	if mode == jsonOutput {
		data, err := json.MarshalIndent(errorView{Error: e, Name: e.Name()}, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode error")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintln(w, e.Error())
	return err
}

// ExplainCommand creates an "explain" subcommand. It parses a query
// expression, formats it against the --backtrace path and prints the report
// as an error of the --kind given.
func ExplainCommand() *cobra.Command {
	var (
		backtrace []string
		message   string
		kind      string
		flags     reportFlags
	)

	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Point at the term of a query a backtrace refers to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseOutputMode(flags.format)
			if err != nil {
				return err
			}
			k, err := reql.ParseKind(strings.ToUpper(kind))
			if err != nil {
				return err
			}
			rep, err := flags.reporter()
			if err != nil {
				return err
			}
			root, err := reql.Parse(args[0])
			if err != nil {
				return err
			}

			bt := reql.Backtrace(backtrace)
			if err := bt.Validate(); err != nil {
				klog.V(1).InfoS("Backtrace will not fully resolve", "backtrace", bt, "err", err)
			}
			klog.V(2).InfoS("Explaining query", "query", root.String(), "frames", len(bt), "kind", k.Code())

			return writeError(cmd.OutOrStdout(), mode, rep.Error(k, message, bt, root))
		},
	}

	cmd.Flags().StringSliceVar(&backtrace, "backtrace", nil, `Backtrace frames, e.g. "arg:0,arg:1" or "lowerbound"`)
	cmd.Flags().StringVar(&message, "message", "", "Server error message (default: the kind's default message)")
	cmd.Flags().StringVar(&kind, "kind", reql.ErrBadQuery, "Error kind: BAD_QUERY, RUNTIME_ERROR, BROKEN_CLIENT or CLIENT_ERROR")
	flags.bind(cmd.Flags())
	return cmd
}

// ResponseCommand creates a "response" subcommand. It decodes a server
// response from --response (a file, or "-" for stdin) and prints the error it
// maps to for the given query. Success responses print nothing.
func ResponseCommand() *cobra.Command {
	var (
		path  string
		flags reportFlags
	)

	cmd := &cobra.Command{
		Use:   "response <query>",
		Short: "Explain a server response for the query that was sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseOutputMode(flags.format)
			if err != nil {
				return err
			}
			rep, err := flags.reporter()
			if err != nil {
				return err
			}
			root, err := reql.Parse(args[0])
			if err != nil {
				return err
			}

			resp, err := readResponse(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			klog.V(2).InfoS("Decoded response", "type", resp.Type, "token", resp.Token, "backtrace", resp.Backtrace)

			respErr := resp.ErrWith(rep, root)
			if respErr == nil {
				return nil
			}
			var e *reql.Error
			if !errors.As(respErr, &e) {
				return respErr
			}
			return writeError(cmd.OutOrStdout(), mode, e)
		},
	}

	cmd.Flags().StringVar(&path, "response", "-", `Response JSON file, "-" reads stdin`)
	flags.bind(cmd.Flags())
	return cmd
}

func readResponse(stdin io.Reader, path string) (*reql.Response, error) {
	if path == "-" {
		return reql.DecodeResponse(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, reql.Wrap(errors.Wrap(err, "open response"), "")
	}
	defer f.Close()
	return reql.DecodeResponse(f)
}

// AddCommands adds the "explain" and "response" commands as subcommands of parent.
func AddCommands(parent *cobra.Command) {
	parent.AddCommand(ExplainCommand())
	parent.AddCommand(ResponseCommand())
}
