package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain/tag"
	healthuc "github.com/kailas-cloud/furnsearch/internal/usecase/health"
)

const shellHelp = `Type a query to search. Commands:
  :refine <type> <label>   refine the last query (type: category, material, style, color, price_range)
  :image <path>            search by image
  :health                  show component health
  :help                    show this help
  :quit                    exit
`

func newShellCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive search session with the ops server running",
		Long: `Start an interactive session: one query per line. The ops server
(/health, /metrics, /version, /debug/tag-index) listens on ops.addr for
the lifetime of the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.env)
			if err != nil {
				return err
			}
			defer a.Close()

			ops := a.opsServer()
			addr, err := ops.Start()
			if err != nil {
				return err
			}
			defer func() {
				if err := ops.Shutdown(context.WithoutCancel(ctx)); err != nil {
					a.logger.Error("Error during ops shutdown", zap.Error(err))
				}
			}()

			fmt.Fprintf(cmd.ErrOrStderr(), "furnsearch shell (ops on %s). :help for commands.\n", addr)
			return runShell(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), opts.format, a.search, a.health)
		},
	}
}

type healthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// runShell reads one command or query per line until EOF, :quit or
// context cancellation. Search failures are printed and the session continues.
func runShell(ctx context.Context, in io.Reader, out io.Writer, format string, s searcher, h healthReporter) error {
	scanner := bufio.NewScanner(in)
	var last string

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case ":quit", ":exit", ":q":
			return nil
		case ":help":
			fmt.Fprint(out, shellHelp)
		case ":health":
			report(out, writeJSONLine(out, h.Check(ctx)))
		case ":image":
			if rest == "" || rest == "-" {
				fmt.Fprintln(out, "usage: :image <path>")
				continue
			}
			data, err := readImage(nil, rest, false)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			report(out, writeResponse(out, format, s.Image(ctx, data)))
		case ":refine":
			if last == "" {
				fmt.Fprintln(out, "error: no previous query to refine")
				continue
			}
			typ, label, ok := strings.Cut(rest, " ")
			category, err := tag.ParseCategory(typ)
			if !ok || err != nil {
				fmt.Fprintln(out, "usage: :refine <type> <label>")
				continue
			}
			report(out, writeResponse(out, format, s.Refine(ctx, last, strings.TrimSpace(label), category)))
		default:
			last = line
			report(out, writeResponse(out, format, s.Text(ctx, line)))
		}
	}
}

func report(out io.Writer, err error) {
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}
