package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/berfenger/econet2mqtt/internal/adapter/actor"
	"github.com/berfenger/econet2mqtt/internal/config"
	"github.com/berfenger/econet2mqtt/internal/core/actor"
	"github.com/berfenger/econet2mqtt/internal/jobs"
	"github.com/berfenger/econet2mqtt/internal/metrics"
	"github.com/berfenger/econet2mqtt/internal/server"
	"github.com/berfenger/econet2mqtt/internal/translations"
	"github.com/berfenger/econet2mqtt/internal/util/actorutil"
	"github.com/berfenger/econet2mqtt/pkg/econet300"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The server has 5 seconds to finish the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	if err := translations.Err(); err != nil {
		logger.Warn("translations not loaded, falling back to default names", zap.Error(err))
	}

	// prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewMetrics(registry)
	if err != nil {
		logger.Fatal("metrics registration failed", zap.Error(err))
	}

	// ecoNET300 client
	api, err := econet300.CreateHTTPReader(cfg.Econet.Host, cfg.Econet.Username, cfg.Econet.Password,
		time.Duration(cfg.Econet.TimeoutMillis)*time.Millisecond, logger, m.EconetInstrument())
	if err != nil {
		logger.Fatal("invalid econet config", zap.Error(err))
	}

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, api, econetActorProvider(cfg, api, logger), mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		logger.Fatal("could not start master actor", zap.Error(err))
	}

	// periodic discovery republish
	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()
	if cfg.MQTT.HADiscoveryEnable {
		interval := time.Duration(cfg.MQTT.HADiscoveryRepublishSeconds) * time.Second
		sched, err := jobs.StartScheduler(schedCtx, interval, jobs.NewRepublishDiscoveryJob(ctx, pid, logger))
		if err != nil {
			logger.Fatal("could not schedule discovery republish", zap.Error(err))
		}
		if sched != nil {
			defer sched.Stop()
		}
	}

	server := server.NewServer(*cfg, ctx, pid, registry, m)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => ECONET_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("ECONET_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("econet")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = config.ParseLogLevel(viper.GetString("log_level"))

	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func econetActorProvider(cfg *config.Config, api econet300.Reader, logger *zap.Logger) actor.EconetActorProvider {
	return func() *adactor.EconetActor {
		return adactor.NewEconetActor(api, time.Duration(cfg.Econet.TimeoutMillis)*time.Millisecond, logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("econet.host", "")
	viper.SetDefault("econet.username", "")
	viper.SetDefault("econet.password", "")
	viper.SetDefault("econet.timeout_millis", 5000)
	viper.SetDefault("econet.available_mixers", 5)
	viper.SetDefault("monitor.poll_interval_millis", 30000)
	viper.SetDefault("mqtt.host", "")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.base_topic", "econet")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("mqtt.ha_discovery_republish_seconds", 0)
	viper.SetDefault("port", 8080)
	viper.SetDefault("http_log", false)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Econet.Username = "*redacted*"
	cfg.Econet.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
