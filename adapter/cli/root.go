package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/felixgeelhaar/opportunity/internal/booking/domain"
	"github.com/felixgeelhaar/opportunity/pkg/observability"
	"github.com/spf13/cobra"
)

var (
	actingAs string
	logger   *slog.Logger
)

type commandContext struct {
	startedAt time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "opportunity",
	Short: "Opportunity - last-minute appointment booking",
	Long: `Opportunity books a last-minute appointment between a service provider,
a service receiver and a facilitator.

The receiver and facilitator each mark the slots they can attend, the
provider picks one of the mutual slots, and both parties confirm it.
Use --as to choose which party you act as.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = observability.NewRequestContext(ctx, "")
		ctx = context.WithValue(ctx, commandContextKey{}, commandContext{startedAt: time.Now()})
		cmd.SetContext(ctx)
		logger.DebugContext(ctx, "command start",
			"command", cmd.CommandPath(),
			"as", actingAs,
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		observability.LogCommandEnd(cmd.Context(), logger, cmd.CommandPath(), info.startedAt, nil)
	},
}

// Execute runs the root command under ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Exit prints err and exits non-zero when err is set.
func Exit(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&actingAs, "as", string(domain.RoleProvider), "party to act as (provider, receiver, facilitator)")
}

// ActingRole returns the role selected with --as.
func ActingRole() (domain.Role, error) {
	return domain.ParseRole(actingAs)
}

// SetActingRole overrides --as.
func SetActingRole(role domain.Role) {
	actingAs = string(role)
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}
