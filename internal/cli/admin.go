package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"brainup-client/internal/config"
	"brainup-client/internal/dispatch"
	"brainup-client/internal/domain"
	"brainup-client/internal/infra/memory"
	redissnap "brainup-client/internal/infra/redis"
	"brainup-client/internal/roster"
	"brainup-client/internal/transport/api"
	"brainup-client/internal/transport/stream"
)

// SnapshotStore persists roster snapshots between admin console runs.
type SnapshotStore interface {
	Save(ctx context.Context, snap domain.LeaderboardSnapshot) error
	Load(ctx context.Context, sessionID string) (domain.LeaderboardSnapshot, bool, error)
}

// NewAdminCmd builds the administrator console subcommand.
func NewAdminCmd(configPath, serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Run the administrator dashboard console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdmin(cmd.Context(), *configPath, *serverURL)
		},
	}
}

func runAdmin(ctx context.Context, configPath, serverOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serverOverride != "" {
		cfg.Server.APIURL = serverOverride
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store SnapshotStore = memory.NewSnapshotStore()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = redissnap.NewSnapshotStore(client, config.DurationOr(cfg.Redis.TTL, 24*time.Hour))
	}

	board := roster.New(cfg.Quiz.Session)
	if snap, ok, err := store.Load(ctx, cfg.Quiz.Session); err != nil {
		log.Warn().Err(err).Msg("could not load roster snapshot")
	} else if ok {
		board.Restore(snap)
		log.Info().Int("participants", board.Len()).Msg("restored roster snapshot")
	}

	events, cancelStream, err := stream.NewClient(cfg.Stream.AdminURL).Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("connect admin stream: %w", err)
	}
	defer cancelStream()

	commands := api.NewClient(cfg.Server.APIURL)
	dispatcher := dispatch.New(commands, clockwork.NewRealClock(),
		config.DurationOr(cfg.Quiz.ConfirmWindow, 2*time.Second))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				board.Apply(ev)
				renderBoard(board)
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := store.Save(gctx, board.Snapshot()); err != nil {
					log.Warn().Err(err).Msg("snapshot save failed")
				}
			case <-gctx.Done():
				// Final best-effort save so a restart keeps the standings.
				saveCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := store.Save(saveCtx, board.Snapshot()); err != nil {
					log.Warn().Err(err).Msg("final snapshot save failed")
				}
				return nil
			}
		}
	})

	fmt.Printf("admin console ready — type a question number (1-%d) to push it, q to quit\n", cfg.Quiz.QuestionCount)

	lines := readLines()
	for {
		select {
		case <-ctx.Done():
			cancelStream()
			return g.Wait()
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "q" {
				stop()
				cancelStream()
				return g.Wait()
			}
			handleAdminLine(ctx, dispatcher, cfg.Quiz.QuestionCount, line)
		}
	}
}

func handleAdminLine(ctx context.Context, dispatcher *dispatch.Dispatcher, questionCount int, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > questionCount {
		fmt.Printf("enter a question number between 1 and %d, or q to quit\n", questionCount)
		return
	}

	if err := dispatcher.Select(ctx, n); err != nil {
		if errors.Is(err, domain.ErrSelectionPending) {
			fmt.Println("previous selection still in flight, try again shortly")
			return
		}
		fmt.Printf("question %d was NOT confirmed\n", n)
		return
	}
	fmt.Printf("question %d sent to participants\n", n)
}

func renderBoard(board *roster.Roster) {
	fmt.Printf("\n--- leaderboard (%d online, avg %.1f) ---\n", board.OnlineCount(), board.AverageScore())
	for i, p := range board.Leaderboard() {
		status := "online"
		if !p.Active {
			status = "offline"
		}
		fmt.Printf("#%d %-20s %2d  %s\n", i+1, p.Name, p.Score, status)
	}
}

// readLines pumps stdin into a channel so console loops can also react to
// context cancellation.
func readLines() <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
