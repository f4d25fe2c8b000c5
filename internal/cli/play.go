package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"brainup-client/internal/config"
	"brainup-client/internal/domain"
	"brainup-client/internal/session"
	"brainup-client/internal/transport/api"
	"brainup-client/internal/transport/stream"
)

// NewPlayCmd builds the participant console subcommand.
func NewPlayCmd(configPath, serverURL *string) *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run the participant quiz console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, *serverURL, demo)
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "play the built-in question bank without a server")
	return cmd
}

func runPlay(ctx context.Context, configPath, serverOverride string, demo bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serverOverride != "" {
		cfg.Server.APIURL = serverOverride
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	playerID := uuid.NewString()
	commands := api.NewClient(cfg.Server.APIURL)

	var submitter session.Submitter = commands
	if demo {
		submitter = localSubmitter{}
	}
	machine := session.NewMachine(submitter, clockwork.NewRealClock(), cfg.Quiz.CountdownSeconds)
	defer machine.Close()

	nextDemo := demoFeed()

	g, gctx := errgroup.WithContext(ctx)
	cancelStream := func() {}

	if demo {
		if q, ok := nextDemo(); ok {
			machine.StartQuestion(q)
			renderQuestion(machine)
		}
	} else {
		events, cancel, err := stream.NewClient(cfg.Stream.QuizURL).Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("connect quiz stream: %w", err)
		}
		cancelStream = cancel
		defer cancelStream()

		g.Go(func() error {
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					if ev.Kind != domain.EventQuestionChanged {
						log.Debug().Str("event", string(ev.Kind)).Msg("ignoring stream event")
						continue
					}
					var q domain.Question
					if err := json.Unmarshal(ev.Data, &q); err != nil {
						log.Warn().Err(err).Msg("discarding malformed question payload")
						continue
					}
					machine.StartQuestion(q)
					renderQuestion(machine)
				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	fmt.Println("quiz console ready — pick an alternative by number, s to submit, n to wait for the next question, q to quit")

	lines := readLines()
	for {
		select {
		case <-ctx.Done():
			cancelStream()
			return g.Wait()
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "q" {
				if !demo {
					if err := commands.Exit(ctx, playerID); err != nil {
						log.Warn().Err(err).Msg("exit command failed")
					}
				}
				stop()
				cancelStream()
				return g.Wait()
			}
			handlePlayLine(ctx, machine, demo, nextDemo, line)
		}
	}
}

func handlePlayLine(ctx context.Context, machine *session.Machine, demo bool, nextDemo func() (domain.Question, bool), line string) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
	case "s":
		if err := machine.Submit(ctx); err != nil {
			fmt.Println("submission failed — press s to retry")
			return
		}
		if machine.ShowResult() {
			renderResult(machine)
		}
	case "n":
		machine.AwaitNext()
		if demo {
			if q, ok := nextDemo(); ok {
				machine.StartQuestion(q)
				renderQuestion(machine)
				return
			}
			fmt.Println("no questions left in the demo bank")
			return
		}
		fmt.Println("waiting for the next question...")
	case "t":
		renderCountdown(machine)
	default:
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("pick an alternative by number, s to submit, n for next, q to quit")
			return
		}
		machine.Select(n - 1)
		if sel := machine.Selected(); sel != nil && *sel == n-1 {
			fmt.Printf("selected alternative %d\n", n)
		}
	}
}

func renderQuestion(machine *session.Machine) {
	q := machine.Question()
	if q == nil {
		return
	}
	fmt.Printf("\nquestion %d: %s\n", q.ID, q.Prompt)
	for i, alt := range q.Alternatives {
		fmt.Printf("  %d) %s\n", i+1, alt)
	}
	renderCountdown(machine)
}

func renderCountdown(machine *session.Machine) {
	urgency := "plenty of time"
	switch machine.Urgency() {
	case session.UrgencyMedium:
		urgency = "hurry up"
	case session.UrgencyHigh:
		urgency = "almost out of time"
	}
	fmt.Printf("%ds left (%.0f%%) — %s\n", machine.Remaining(), machine.Progress(), urgency)
}

func renderResult(machine *session.Machine) {
	q := machine.Question()
	if q == nil {
		return
	}
	switch machine.Outcome() {
	case domain.OutcomeCorrect:
		fmt.Println("correct!")
	case domain.OutcomeTimeout:
		fmt.Println("time ran out before you answered")
	case domain.OutcomeIncorrect:
		fmt.Printf("incorrect — the right answer was %d) %s\n", q.CorrectAnswer+1, q.Alternatives[q.CorrectAnswer])
	}
	fmt.Println("press n to wait for the next question")
}

// localSubmitter accepts answers without a server so --demo works offline.
type localSubmitter struct{}

func (localSubmitter) SubmitAnswer(_ context.Context, _ domain.AnswerSubmission) error {
	return nil
}
