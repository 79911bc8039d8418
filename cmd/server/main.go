package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminhandler "punchgate/internal/admin/handler"
	adminrepo "punchgate/internal/admin/repository"
	adminservice "punchgate/internal/admin/service"
	attendancehandler "punchgate/internal/attendance/handler"
	attendancerepo "punchgate/internal/attendance/repository"
	attendanceservice "punchgate/internal/attendance/service"
	"punchgate/internal/audit"
	auditrepo "punchgate/internal/audit/repository"
	"punchgate/internal/config"
	"punchgate/internal/db"
	devicehandler "punchgate/internal/device/handler"
	devicerepo "punchgate/internal/device/repository"
	deviceservice "punchgate/internal/device/service"
	employeehandler "punchgate/internal/employee/handler"
	employeerepo "punchgate/internal/employee/repository"
	"punchgate/internal/httpapi"
	"punchgate/internal/security"
	"punchgate/internal/server"
	"punchgate/internal/telemetry"
	otelsetup "punchgate/internal/telemetry/otel"
	"punchgate/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.DatabaseURL == "" {
		log.Fatal("config: DATABASE_URL must be set")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("jwt private key: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.IntentTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	ctx := context.Background()
	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "punchgate", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	var events telemetry.EventEmitter
	var requestEvents producer.Producer
	if brokers := cfg.EventKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.EventKafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		defer func() {
			if err := kp.Close(); err != nil {
				log.Printf("kafka producer close: %v", err)
			}
		}()
		events = kp
		requestEvents = kp
	} else {
		events = otelsetup.NewEventEmitter(providers.LoggerProvider)
	}

	auditLog := audit.NewLogger(auditrepo.NewPostgresRepository(database), httpapi.ClientIP)

	employees := employeerepo.NewPostgresRepository(database)
	devices := devicerepo.NewPostgresRepository(database)
	records := attendancerepo.NewPostgresRepository(database)
	admins := adminrepo.NewPostgresRepository(database)

	registry := deviceservice.NewRegistry(devices, employees, auditLog, events)
	punches := attendanceservice.NewPunchService(records, devices, auditLog, events, loc)
	adminAuth := adminservice.NewAuthService(admins, hasher, tokens, auditLog)

	handler := server.NewRouter(server.RouterConfig{
		Attendance:      attendancehandler.New(punches, registry, employees, tokens, loc, logger),
		AttendanceAdmin: attendancehandler.NewAdmin(punches, loc, logger),
		Devices:         devicehandler.New(registry, logger),
		Employees:       employeehandler.New(employees, cfg.PunchLinkBaseURL, logger),
		Admin:           adminhandler.New(adminAuth, logger),
		AdminAuth:       httpapi.RequireAdmin(adminAuth, logger),
		Middleware: []func(http.Handler) http.Handler{
			httpapi.RealIP(),
			httpapi.RequestLogger(logger),
			httpapi.Telemetry(
				providers.TracerProvider.Tracer("punchgate/http"),
				providers.MeterProvider.Meter("punchgate/http"),
				requestEvents,
				map[string]bool{"/healthz": true},
			),
		},
	})

	srv := server.New(cfg.HTTPAddr, handler)

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async event emits drain before tearing down exporters.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
