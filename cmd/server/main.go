package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"paygate/internal/actor"
	"paygate/internal/backend"
	"paygate/internal/correlator"
	"paygate/internal/identity"
	identityMetrics "paygate/internal/identity/metrics"
	jwttoken "paygate/internal/jwt_token"
	"paygate/internal/payment"
	paymentMetrics "paygate/internal/payment/metrics"
	"paygate/internal/payment/store/decision"
	"paygate/internal/payment/store/volume"
	"paygate/internal/platform/config"
	"paygate/internal/platform/httpserver"
	"paygate/internal/platform/logger"
	platformRedis "paygate/internal/platform/redis"
	"paygate/internal/report"
	"paygate/internal/rules"
	httptransport "paygate/internal/transport/http"
)

// main wires the stores, the actor runtime, and the HTTP layer. Business
// logic lives in the internal packages; everything here is assembly and
// lifecycle.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ruleSet := rules.Default()
	ruleSet.SessionTimeout = cfg.SessionTimeout
	if err := ruleSet.Validate(); err != nil {
		log.Error("invalid rule configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily volume: Redis when configured, in-memory otherwise.
	var volumes payment.VolumeStore = volume.NewMemory()
	if redisClient, err := platformRedis.New(cfg.Redis); err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	} else if redisClient != nil {
		defer redisClient.Close()
		volumes = volume.NewRedis(redisClient.Client)
		log.Info("using redis volume store")
	}

	// Decisions: Postgres when configured, in-memory otherwise.
	var decisions payment.DecisionStore = decision.NewMemory()
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		decisions = decision.NewPostgres(db)
		log.Info("using postgres decision store")
	}

	backendClient := backend.NewHTTPClient(cfg.BackendURL, cfg.BackendTimeout)

	// The backend's daily snapshot covers volume accrued before this process
	// started, so restarts do not reset the limit window.
	volumes = volume.NewBacked(volumes, backendClient, log)

	ids := identity.NewService(ruleSet, backendClient,
		identity.WithLogger(log),
		identity.WithMetrics(identityMetrics.New()),
	)

	payMetrics := paymentMetrics.New()
	auth := payment.NewAuthorizer(ruleSet, decisions, volumes, nil, nil, ids.Ledger(),
		payment.WithLogger(log),
		payment.WithMetrics(payMetrics),
		payment.WithTracer(otel.Tracer("paygate")),
	)

	var publisher report.Publisher = report.NewMemorySink()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := report.NewKafkaPublisher(ctx, report.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ReportTopic,
		}, log)
		if err != nil {
			log.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info("publishing compliance reports to kafka", "topic", cfg.Kafka.ReportTopic)
	}
	reporter := report.NewReporter(publisher)

	runtime := actor.NewRuntime(log)
	results := correlator.New[actor.PaymentDecided](cfg.CorrelationTimeout,
		correlator.WithLogger[actor.PaymentDecided](log))
	sessions := correlator.New[actor.VerificationStarted](cfg.CorrelationTimeout,
		correlator.WithLogger[actor.VerificationStarted](log))

	wallet := actor.NewWallet(runtime, results, ids, auth.Gate(), ruleSet.Verification, log)
	if err := runtime.Register(actor.RoleWallet, wallet); err != nil {
		log.Error("actor registration failed", "error", err)
		os.Exit(1)
	}
	if err := runtime.Register(actor.RolePayment,
		actor.NewPaymentHandler(runtime, auth, backendClient, reporter, payMetrics, log)); err != nil {
		log.Error("actor registration failed", "error", err)
		os.Exit(1)
	}
	if err := runtime.Register(actor.RoleIdentity,
		actor.NewIdentityHandler(sessions, ids, log)); err != nil {
		log.Error("actor registration failed", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.AdminJWTKey, "paygate")

	router := httptransport.NewRouter(httptransport.Deps{
		Wallet:         wallet,
		Gate:           auth.Gate(),
		Identity:       ids,
		IdentityClient: actor.NewIdentityClient(runtime, sessions),
		Sender:         runtime,
		Rules:          ruleSet,
		TokenValidator: jwttoken.NewValidatorAdapter(jwtService),
		Logger:         log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runtime.Run(ctx)
	})
	g.Go(func() error {
		actor.SweepLoop(ctx, runtime, time.Minute)
		return nil
	})
	g.Go(func() error {
		log.Info("starting paygate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("paygate stopped")
}
