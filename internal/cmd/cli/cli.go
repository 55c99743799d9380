// Package cli builds the tableroll command-line client: one-off rolls and
// system listings against the embedded tables or a running game server.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	dicegrpc "github.com/louisbranch/tableroll/internal/api/grpc/dice"
	"github.com/louisbranch/tableroll/internal/core/table"
	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	platformgrpc "github.com/louisbranch/tableroll/internal/platform/grpc"
	"github.com/louisbranch/tableroll/internal/platform/timeouts"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Dice is the dice service the commands call.
type Dice interface {
	Roll(ctx context.Context, req diceservice.Request) (diceservice.Outcome, error)
	ListSystems(ctx context.Context) ([]diceservice.SystemInfo, error)
}

type connectFunc func(ctx context.Context, opts *options) (Dice, func() error, error)

type options struct {
	addr    string
	catalog string
	locale  string
	asJSON  bool
	connect connectFunc
}

// NewRootCommand builds the tableroll command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRootCommand(out, connectDice)
}

func newRootCommand(out io.Writer, connect connectFunc) *cobra.Command {
	opts := &options{connect: connect}

	rootCmd := &cobra.Command{
		Use:           "tableroll",
		Short:         "Roll tabletop dice commands for ColossalHunter, Kamigakari, Gorilla and OrgaRain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&opts.addr, "addr", "", "game server address (default: evaluate in process)")
	rootCmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "SQLite table catalog for in-process evaluation")
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", apperrors.DefaultLocale, "locale for error messages")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	rootCmd.AddCommand(newRollCommand(opts), newSystemsCommand(opts))
	return rootCmd
}

func newRollCommand(opts *options) *cobra.Command {
	var seed string
	cmd := &cobra.Command{
		Use:   "roll <system> <command>",
		Short: "Evaluate one dice command",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := diceservice.Request{System: args[0], Command: strings.Join(args[1:], " ")}
			if strings.TrimSpace(seed) != "" {
				value, err := strconv.ParseInt(strings.TrimSpace(seed), 10, 64)
				if err != nil {
					return fmt.Errorf("seed must be a decimal integer: %w", err)
				}
				req.Seed = &value
			}

			dice, closeFn, err := opts.connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			outcome, err := dice.Roll(cmd.Context(), req)
			if err != nil {
				return userError(err, opts.locale)
			}
			return printOutcome(cmd.OutOrStdout(), outcome, opts.asJSON)
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "replay a previous roll from its seed")
	return cmd
}

func newSystemsCommand(opts *options) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "systems",
		Short: "List game systems and their commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dice, closeFn, err := opts.connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			list, err := dice.ListSystems(cmd.Context())
			if err != nil {
				return userError(err, opts.locale)
			}
			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, list)
			}
			for _, info := range list {
				fmt.Fprintf(out, "%s\t%s\t%s\n", info.ID, info.Name, info.Locale)
				if verbose {
					fmt.Fprintln(out, strings.TrimSpace(info.Help))
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include command help")
	return cmd
}

func printOutcome(out io.Writer, outcome diceservice.Outcome, asJSON bool) error {
	if asJSON {
		return writeJSON(out, rollJSON{
			System:  outcome.System,
			Command: outcome.Command,
			Handled: outcome.Handled,
			Text:    outcome.Text,
			Outcome: outcome.Outcome.String(),
			Seed:    strconv.FormatInt(outcome.Seed, 10),
			Audit:   outcome.Audit,
		})
	}
	if !outcome.Handled {
		fmt.Fprintf(out, "%s does not recognize %q\n", outcome.System, outcome.Command)
		return nil
	}
	fmt.Fprintln(out, outcome.Text)
	fmt.Fprintf(out, "seed %d\n", outcome.Seed)
	return nil
}

type rollJSON struct {
	System  string      `json:"system"`
	Command string      `json:"command"`
	Handled bool        `json:"handled"`
	Text    string      `json:"text"`
	Outcome string      `json:"outcome"`
	Seed    string      `json:"seed"`
	Audit   table.Audit `json:"audit"`
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// userError replaces domain errors with their localized message.
func userError(err error, locale string) error {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return err
	}
	return fmt.Errorf("%s: %s", code, apperrors.UserMessage(err, locale))
}

func connectDice(ctx context.Context, opts *options) (Dice, func() error, error) {
	addr := strings.TrimSpace(opts.addr)
	if addr == "" {
		svc, err := diceservice.Open(ctx, opts.catalog)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() error { return nil }, nil
	}
	conn, err := platformgrpc.Dial(ctx, addr, platformgrpc.DialOptions{
		Timeout: timeouts.GRPCDial,
		Service: dicegrpc.ServiceName,
	}))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to game server at %s: %w", addr, err)
	}
	return dicegrpc.NewClient(conn, opts.locale), conn.Close, nil
}
