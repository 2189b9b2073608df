// Server runs the MedSupply procurement portal. With DATABASE_URL unset it keeps all data in
// memory and loads the demo accounts at startup.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	auditrepo "medsupply/internal/audit/repository"
	"medsupply/internal/config"
	"medsupply/internal/db"
	identityservice "medsupply/internal/identity/service"
	"medsupply/internal/mfa/relay"
	orderrepo "medsupply/internal/order/repository"
	"medsupply/internal/policy/engine"
	"medsupply/internal/security"
	"medsupply/internal/seed"
	"medsupply/internal/server"
	"medsupply/internal/session"
	sessionrepo "medsupply/internal/session/repository"
	"medsupply/internal/telemetry"
	otelsetup "medsupply/internal/telemetry/otel"
	"medsupply/internal/telemetry/producer"
	userrepo "medsupply/internal/user/repository"
)

const (
	// sessionTokenTTL bounds the cookie; the server-side session expires sooner when idle.
	sessionTokenTTL = 12 * time.Hour
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

type stores struct {
	users    userrepo.Repository
	sessions sessionrepo.Repository
	orders   orderrepo.Repository
	audit    auditrepo.Repository
	conn     *sql.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx := context.Background()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	emitters := telemetry.Fanout{otelsetup.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("telemetry: emitting to kafka topic %s", cfg.TelemetryKafkaTopic)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	st, err := openStores(ctx, cfg, hasher)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	if st.conn != nil {
		defer st.conn.Close()
	}

	signer, pub, err := security.LoadSigningKeys(cfg.SessionPrivateKey, cfg.SessionPublicKey)
	if err != nil {
		log.Fatalf("session keys: %v", err)
	}
	if cfg.SessionPrivateKey == "" {
		log.Println("session: no signing key configured, using an ephemeral key")
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.SessionIssuer, sessionTokenTTL)

	policy, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	auth := identityservice.NewAuthService(
		st.users,
		st.sessions,
		relay.NewMailerClient(cfg.MailerURL, cfg.RelayTimeout()),
		hasher,
		identityservice.Settings{
			OTPTTL:         cfg.OTPTTL(),
			SessionTTL:     cfg.SessionTTL(),
			MaxOTPAttempts: cfg.OTPMaxAttempts,
		},
	)

	deps := server.Deps{
		Auth:                auth,
		Tokens:              tokens,
		Users:               st.users,
		Orders:              st.orders,
		Policy:              policy,
		AuditRepo:           st.audit,
		Emitter:             emitters,
		TracerProvider:      providers.TracerProvider,
		MeterProvider:       providers.MeterProvider,
		HealthPolicyChecker: policy,
		CookieSecure:        cfg.SessionCookieSecure,
	}
	if st.conn != nil {
		deps.HealthPinger = st.conn
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go session.Sweep(sweepCtx, st.sessions, sweepInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("portal listening on %s (mailer %s)", cfg.HTTPAddr, cfg.MailerURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down portal...")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := kafkaProducer.Close(); err != nil {
		log.Printf("kafka close: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("portal stopped")
}

// openStores connects to Postgres when DATABASE_URL is set; otherwise it returns memory
// stores loaded with the demo data.
func openStores(ctx context.Context, cfg *config.Config, hasher *security.Hasher) (*stores, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    userrepo.NewPostgresRepository(conn),
			sessions: sessionrepo.NewPostgresRepository(conn),
			orders:   orderrepo.NewPostgresRepository(conn),
			audit:    auditrepo.NewPostgresRepository(conn),
			conn:     conn,
		}, nil
	}

	log.Println("storage: DATABASE_URL not set, using in-memory stores")
	users := userrepo.NewMemoryRepository()
	orders := orderrepo.NewMemoryRepository(func(ctx context.Context, userID string) string {
		u, err := users.GetByID(ctx, userID)
		if err != nil || u == nil {
			return ""
		}
		return u.HospitalName
	})
	if _, err := seed.Demo(ctx, users, orders, hasher); err != nil {
		return nil, err
	}
	return &stores{
		users:    users,
		sessions: sessionrepo.NewMemoryRepository(),
		orders:   orders,
		audit:    auditrepo.NewMemoryRepository(),
	}, nil
}
