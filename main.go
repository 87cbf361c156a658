package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/tokengate/audit"
	"github.com/dev-mohitbeniwal/tokengate/config"
	"github.com/dev-mohitbeniwal/tokengate/controller"
	"github.com/dev-mohitbeniwal/tokengate/dao"
	"github.com/dev-mohitbeniwal/tokengate/db"
	"github.com/dev-mohitbeniwal/tokengate/engine"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/model"
	"github.com/dev-mohitbeniwal/tokengate/oracle"
	"github.com/dev-mohitbeniwal/tokengate/router"
	"github.com/dev-mohitbeniwal/tokengate/scheduler"
	"github.com/dev-mohitbeniwal/tokengate/service"
	"github.com/dev-mohitbeniwal/tokengate/telegram"
	"github.com/dev-mohitbeniwal/tokengate/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.GetConfig()

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	policy := model.Policy{
		TokenMint:      cfg.Token.Mint,
		MinTokenAmount: cfg.Token.MinAmount,
		GraceMargin:    cfg.Token.GraceMargin,
	}

	// Balance cache: Redis when configured, in-process otherwise.
	var balanceCache oracle.Cache
	redisEnabled := cfg.Redis.Addr != ""
	if redisEnabled {
		if err := db.InitRedis(); err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		defer db.CloseRedis()
		balanceCache = db.NewRedisBalanceCache(db.RedisClient)
	} else {
		logger.Info("Redis not configured, using in-process balance cache")
		balanceCache = oracle.NewMemoryCache()
	}

	// Balance sources in fixed priority order: RPC, then the indexers.
	sources := []oracle.BalanceSource{
		oracle.NewRPCSource(cfg.Oracle.RPCURL, cfg.Oracle.RequestTimeout),
		oracle.NewBirdeyeSource(cfg.Oracle.BirdeyeURL, cfg.Oracle.RequestTimeout),
		oracle.NewSolscanSource(cfg.Oracle.SolscanURL, cfg.Oracle.RequestTimeout),
	}
	balanceOracle := oracle.New(sources, balanceCache, cfg.Oracle.CacheTTL)

	// Membership registry and decision engine.
	registry := dao.NewUserDAO(cfg.Registry.UsersFile)
	evaluator := engine.NewEvaluator(registry, balanceOracle, policy)

	// Chat transport and notification sink.
	tgClient := telegram.NewClient(cfg.Telegram.BotToken, 10*time.Second)
	notificationSvc := util.NewNotificationService(
		tgClient,
		cfg.Telegram.AdminChatID,
		cfg.Telegram.GroupChatID,
		cfg.Telegram.VIPChannelID,
	)

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Decision audit trail, when Elasticsearch is configured.
	var auditService audit.Service
	if cfg.Elasticsearch.URL != "" {
		auditRepository, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL)
		if err != nil {
			logger.Fatal("Failed to initialize audit repository", zap.Error(err))
		}
		auditService = audit.NewService(auditRepository)
		eventBus.Subscribe(util.EventAccessEvaluated, func(ctx context.Context, event util.Event) error {
			evt := event.Payload.(model.AccessEvent)
			return auditService.LogDecision(ctx, audit.DecisionLog{
				Timestamp: time.Now(),
				UserID:    evt.User.ID,
				Username:  evt.User.Username,
				Wallet:    model.ShortWallet(evt.User.Wallet),
				Trigger:   evt.Trigger,
				Granted:   evt.Decision.Granted,
				Balance:   evt.Decision.Balance,
				Rationale: evt.Decision.Rationale,
			})
		})
	} else {
		logger.Warn("Elasticsearch not configured, decision audit trail disabled")
	}

	// Admin notification on user-triggered evaluations, so a human can
	// audit every automated call. Sweep alerts are the scheduler's own.
	eventBus.Subscribe(util.EventAccessEvaluated, func(ctx context.Context, event util.Event) error {
		evt := event.Payload.(model.AccessEvent)
		if evt.Trigger == model.TriggerUserSweep || evt.Trigger == model.TriggerChannelAudit {
			return nil
		}
		if evt.Decision.Unavailable {
			return nil
		}
		verdict := "denied"
		if evt.Decision.Granted {
			verdict = "granted"
		}
		return notificationSvc.NotifyAdmin(ctx, fmt.Sprintf(
			"Access %s (%s)\n\nUser: %s (@%s)\nWallet: %s\n%s",
			verdict, evt.Trigger, evt.User.Name, evt.User.Username,
			model.ShortWallet(evt.User.Wallet), evt.Decision.Rationale))
	})

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	membershipService := service.NewMembershipService(
		registry,
		validationUtil,
		evaluator,
		balanceOracle,
		notificationSvc,
		eventBus,
	)

	// Periodic reconciliation.
	recon := scheduler.New(
		registry,
		evaluator,
		notificationSvc,
		eventBus,
		policy,
		cfg.Scheduler.UserSweepInterval,
		cfg.Scheduler.ChannelAuditInterval,
		cfg.Scheduler.SweepWorkers,
	)
	recon.Start(ctx)

	// Initialize controllers
	controllers := &controller.Controllers{
		Bot: controller.NewBotController(
			membershipService,
			notificationSvc,
			policy,
			cfg.Telegram.VIPChannelLink,
		),
		Admin: controller.NewAdminController(membershipService, auditService),
	}

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engineRouter := router.SetupRouter(controllers, 100, time.Minute, redisEnabled)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engineRouter,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Stop the scheduler and event bus, then drain in-flight requests.
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
