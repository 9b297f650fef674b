package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archetype-bot/internal/analytics"
	"archetype-bot/internal/app"
	"archetype-bot/internal/config"
	"archetype-bot/internal/infra/assets"
	"archetype-bot/internal/infra/memory"
	"archetype-bot/internal/infra/postgres"
	redisinfra "archetype-bot/internal/infra/redis"
	"archetype-bot/internal/questionbank"
	transporthttp "archetype-bot/internal/transport/http"
	"archetype-bot/internal/transport/telegram"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	tele "gopkg.in/telebot.v3"
)

// NewStartCmd builds the CLI subcommand to start the bot.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz bot and its HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), *configPath, *port)
		},
	}
}

func runBot(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token not configured")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	questionSet, err := config.LoadQuestions(cfg.Quiz.QuestionsFile)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	// A broken question set is fatal: the bot must not serve traffic with it.
	bank, err := questionbank.Build(questionSet.Categories)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		persister   app.ResultPersister
		users       telegram.UserRegistry
		comments    telegram.CommentAccess
		reportCache *memory.ReportCache
	)
	if pool != nil {
		results := postgres.NewResultRepository(pool)
		persister = results
		users = postgres.NewUserRepository(pool)
		comments = postgres.NewCommentStore(pool)
		reportCache = memory.NewReportCache(results, config.TTLDuration(cfg.Quiz.ReportTTL, 30*time.Minute))
	}

	var satisfaction app.SatisfactionStore
	if redisClient != nil {
		satisfaction = redisinfra.NewGateStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 24*time.Hour))
	} else {
		satisfaction = memory.NewGateStore()
	}

	var gate app.GatePolicy = app.DisabledGate{}
	if cfg.Gate.Interval > 0 {
		gate = app.NewIntervalGate(cfg.Gate.Interval, cfg.Gate.Reason, cfg.Telegram.AdminIDs, satisfaction)
	}

	var tracker analytics.Tracker = analytics.Nop{}
	if cfg.Analytics.MixpanelToken != "" {
		tracker = analytics.NewMixpanel(cfg.Analytics.MixpanelToken)
	}

	sessions := memory.NewSessionStore()
	engine := app.NewEngine(bank, sessions, gate, persister, tracker)

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Printf("bot update failed: %v", err)
			if c != nil {
				_ = c.Send("❌ Something went wrong. Please try again.")
			}
		},
	})
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	var reports telegram.ReportCache
	if reportCache != nil {
		reports = reportCache
	}
	handler := telegram.NewHandler(telegram.Deps{
		Engine:       engine,
		Satisfaction: satisfaction,
		Users:        users,
		Comments:     comments,
		Reports:      reports,
		Assets:       assets.NewResolver(cfg.Quiz.ImagesDir, cfg.Quiz.DocumentsDir),
		Questions:    questionSet,
		AdminIDs:     cfg.Telegram.AdminIDs,
		GroupID:      cfg.Telegram.CommentGroupID,
		GroupLink:    cfg.Telegram.CommentGroupLink,
	})
	handler.Register(bot)

	started := time.Now()
	stats := statsSource{
		started:  started,
		sessions: sessions,
		cache:    reportCache,
	}
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transporthttp.NewHandler(stats, 5*time.Second).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting HTTP surface on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start HTTP server: %v", err)
		}
	}()

	go func() {
		log.Printf("starting bot in long-polling mode")
		bot.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}

	bot.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// statsSource snapshots operational counters for /healthz and the admin feed.
type statsSource struct {
	started  time.Time
	sessions *memory.SessionStore
	cache    *memory.ReportCache
}

func (s statsSource) Snapshot() transporthttp.Stats {
	stats := transporthttp.Stats{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		LiveSessions:  s.sessions.Len(),
		Timestamp:     time.Now(),
	}
	if s.cache != nil {
		stats.CachedReports = s.cache.Len()
	}
	return stats
}
