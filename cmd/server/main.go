package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/xtding233/slimelab/internal/api"
	"github.com/xtding233/slimelab/internal/config"
	"github.com/xtding233/slimelab/internal/lab"
	"github.com/xtding233/slimelab/internal/rpc"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

// envOr reads SLIMELAB_<key>, falling back to def.
func envOr(key, def string) string {
	if v := os.Getenv("SLIMELAB_" + key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv("SLIMELAB_" + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if s, err := strconv.Atoi(v); err == nil {
			return time.Duration(s) * time.Second
		}
	}
	return def
}

func main() {
	addr := flag.String("addr", envOr("ADDR", ":8080"), "HTTP listen address")
	grpcAddr := flag.String("grpc", envOr("GRPC_ADDR", ":9090"), "gRPC listen address (empty disables)")
	dbPath := flag.String("db", envOr("DB", "slimelab.db"), "SQLite database path")
	configDir := flag.String("config", envOr("CONFIG_DIR", ""), "config directory (empty = embedded defaults)")
	profile := flag.String("profile", envOr("PROFILE", ""), "config profile")
	watch := flag.Duration("watch", envDuration("WATCH", 2*time.Second), "config poll interval (0 disables)")
	flag.Parse()

	logger.Init()
	log := logger.Log

	loader := config.NewLoader(*configDir)
	_, settings, err := loader.Resolve(*profile)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	db, err := store.NewSQLiteDB(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.WithError(err).Fatal("migrate database")
	}

	svc := lab.New(db, settings, nil)
	if err := svc.Init(); err != nil {
		log.WithError(err).Fatal("init save")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var watchDone <-chan struct{}
	if *watch > 0 && *configDir != "" {
		watchDone = loader.Watch(ctx, *profile, *watch, svc.Apply)
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewServer(svc).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", *addr).Info("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	if *grpcAddr != "" {
		lis, err := net.Listen("tcp", *grpcAddr)
		if err != nil {
			log.WithError(err).Fatal("grpc listen")
		}
		grpcSrv := rpc.NewServer(svc)
		go func() {
			log.WithField("addr", *grpcAddr).Info("grpc listening")
			if err := grpcSrv.Serve(lis); err != nil {
				log.WithError(err).Error("grpc server")
			}
		}()
		defer grpcSrv.GracefulStop()
	}

	<-ctx.Done()
	stop()
	log.Info("shutting down")
	if watchDone != nil {
		<-watchDone
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
}
