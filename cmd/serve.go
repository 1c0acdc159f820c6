package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"task-assign.com/task-assign/internal/auth"
	"task-assign.com/task-assign/internal/cache"
	config "task-assign.com/task-assign/internal/configs"
	"task-assign.com/task-assign/internal/events"
	httpapi "task-assign.com/task-assign/internal/http"
	repository "task-assign.com/task-assign/internal/repositories"
	"task-assign.com/task-assign/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task assignment HTTP API, the event dispatcher and the reminder sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		db, err := config.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		var names cache.NameCache
		redisClient, err := config.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return err
		}
		if redisClient != nil {
			defer redisClient.Close()
			names = cache.NewRedisNameCache(redisClient, "user:name:", cfg.UserCacheTTL)
			log.Printf("user name cache enabled on %s", cfg.RedisAddr)
		}

		var publisher events.Publisher = events.LogPublisher{}
		natsConn, err := config.NewNatsConn(cfg.NatsURL)
		if err != nil {
			return err
		}
		if natsConn != nil {
			defer func() {
				if err := natsConn.Drain(); err != nil {
					log.Printf("nats drain failed: %v", err)
				}
			}()
			publisher = events.NewNatsPublisher(natsConn, cfg.NatsSubjectPrefix)
			log.Printf("publishing task events to %s", cfg.NatsURL)
		}

		var tokens *auth.TokenManager
		if cfg.JWTSecret != "" {
			tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
		}

		userRepo := repository.NewUserRepository(db)
		taskRepo := repository.NewTaskRepository(db)
		assignmentRepo := repository.NewAssignmentRepository(db)

		dispatcher := services.NewDispatchService(publisher, cfg.EventWorkers, cfg.EventQueueSize)

		users := services.NewUserService(userRepo, auth.NewPasswordHasher(auth.DefaultBcryptCost), tokens, names)
		ledger := services.NewAssignmentService(assignmentRepo, userRepo)
		tasks := services.NewTaskService(db, taskRepo, userRepo, ledger, dispatcher)
		queries := services.NewQueryService(taskRepo, ledger, users)

		dispatcher.StartReminderSweep(queries, cfg.ReminderSweepInterval, cfg.ReminderSweepBatch)

		e := echo.New()
		e.HideBanner = true
		httpapi.Register(e, httpapi.NewTaskHandler(tasks, queries, ledger, users), httpapi.NewUserHandler(users), httpapi.Options{
			RateLimitPerMinute: cfg.RateLimit,
			Tokens:             tokens,
			AuthRequired:       cfg.AuthRequired,
		})

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Printf("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("server stopped: %v", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
		dispatcher.Shutdown(shutdownCtx)

		log.Println("HTTP server and event dispatcher shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
