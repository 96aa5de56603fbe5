package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	app "github.com/okian/fulfillment/internal/app"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/fulfillment"
	"github.com/okian/fulfillment/pkg/logger"
)

// AskCmd fulfills a single turn and prints the reply.
func AskCmd() *cobra.Command {
	var (
		flags    storeFlags
		params   []string
		contexts []string
	)
	cmd := &cobra.Command{
		Use:   "ask <intent>",
		Short: "Fulfill one turn against the store",
		Long: `Fulfill one conversational turn and print the spoken reply.

Contexts are written as name=lifespan:subject.

Examples:
  fulfilctl ask PlayerAge --seed fixtures/sample.yaml --param name_age=Magnus
  fulfilctl ask "PlayerElo_Context" --seed fixtures/sample.yaml --context age-context=4:Alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			turn, err := buildTurn(args[0], params, contexts)
			if err != nil {
				return err
			}
			cfg, err := flags.config(ctx)
			if err != nil {
				return err
			}
			store, err := app.OpenStore(ctx, cfg, logger.Nop())
			if err != nil {
				return err
			}
			svc, err := app.FromConfig(cfg, store, logger.Nop())
			if err != nil {
				_ = store.Close()
				return err
			}
			if err := svc.Start(ctx); err != nil {
				_ = store.Close()
				return err
			}
			defer svc.Stop()

			reply, err := svc.Fulfill(ctx, turn)
			printReply(cmd, reply)
			return err
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "turn parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&contexts, "context", "c", nil, "live context as name=lifespan:subject (repeatable)")
	return cmd
}

func buildTurn(intent string, params, contexts []string) (fulfillment.Turn, error) {
	turn := fulfillment.Turn{
		ID:      uuid.NewString(),
		Session: "fulfilctl",
		Intent:  intent,
		Params:  make(map[string]any, len(params)),
	}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fulfillment.Turn{}, fmt.Errorf("invalid --param %q: want key=value", p)
		}
		turn.Params[strings.TrimSpace(key)] = value
	}
	for _, c := range contexts {
		parsed, err := parseContext(c)
		if err != nil {
			return fulfillment.Turn{}, err
		}
		turn.Contexts = append(turn.Contexts, parsed)
	}
	return turn, nil
}

// parseContext reads "name=lifespan:subject".
func parseContext(s string) (model.Context, error) {
	rawName, rest, ok := strings.Cut(s, "=")
	if !ok {
		return model.Context{}, fmt.Errorf("invalid --context %q: want name=lifespan:subject", s)
	}
	name, err := model.ParseContextName(strings.TrimSpace(rawName))
	if err != nil {
		return model.Context{}, err
	}
	rawLife, subject, ok := strings.Cut(rest, ":")
	if !ok || strings.TrimSpace(subject) == "" {
		return model.Context{}, fmt.Errorf("invalid --context %q: missing subject", s)
	}
	lifespan, err := strconv.Atoi(strings.TrimSpace(rawLife))
	if err != nil {
		return model.Context{}, fmt.Errorf("invalid --context %q: lifespan: %w", s, err)
	}
	if strings.HasPrefix(string(name), "tournament-") {
		return model.TournamentContext(name, lifespan, subject), nil
	}
	return model.PlayerContext(name, lifespan, subject), nil
}

func printReply(cmd *cobra.Command, reply fulfillment.Reply) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, reply.Text)

	tag := color.New(color.FgGreen)
	switch reply.Outcome {
	case fulfillment.OutcomeFailed, fulfillment.OutcomeUnknown:
		tag = color.New(color.FgRed)
	case fulfillment.OutcomeNotFound, fulfillment.OutcomePartial, fulfillment.OutcomeClarify:
		tag = color.New(color.FgYellow)
	}
	fmt.Fprintf(out, "  outcome: %s\n", tag.Sprint(reply.Outcome))
	if reply.Context != nil {
		subject, _ := model.Subject(reply.Context.Parameters, model.ParamPlayer)
		if subject == "" {
			subject, _ = model.Subject(reply.Context.Parameters, model.ParamTournament)
		}
		fmt.Fprintf(out, "  context: %s\n", color.New(color.FgCyan).Sprintf("%s=%d:%s",
			reply.Context.Name, reply.Context.Lifespan, subject))
	}
}
