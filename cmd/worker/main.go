// Worker consumes telemetry events from Kafka and exports them as OpenTelemetry log records.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID and OTEL_EXPORTER_OTLP_ENDPOINT.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"medsupply/internal/config"
	"medsupply/internal/telemetry/consumer"
	otelsetup "medsupply/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.OTLPEndpoint == "" {
		log.Fatal("worker: OTEL_EXPORTER_OTLP_ENDPOINT is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName+"-worker", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	c := consumer.NewKafkaConsumer(brokers, cfg.TelemetryKafkaTopic, cfg.KafkaGroupID, otelsetup.NewEventEmitter(providers.LoggerProvider))
	defer c.Close()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)
	if err := c.Run(ctx); err != nil {
		log.Printf("worker: %v", err)
	}
	log.Println("worker: stopped")
}
