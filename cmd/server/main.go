package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zhengyanglee07/Let-s-Chat/internal/chat"
	"github.com/zhengyanglee07/Let-s-Chat/internal/config"
	"github.com/zhengyanglee07/Let-s-Chat/internal/directory"
	"github.com/zhengyanglee07/Let-s-Chat/internal/server"
	"github.com/zhengyanglee07/Let-s-Chat/internal/storage"
	"github.com/zhengyanglee07/Let-s-Chat/internal/transport/tcp"
	"github.com/zhengyanglee07/Let-s-Chat/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	httpAddr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address (WebSocket and REST)")
	tcpAddr := flag.String("tcp-addr", cfg.TCPAddr, "Optional TCP listen address (empty disables the TCP transport)")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	db, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = storage.Close(db) }()

	store, err := storage.NewMessageStore(db)
	if err != nil {
		log.Fatal("failed to init message store", zap.Error(err))
	}
	dir, err := directory.New(db)
	if err != nil {
		log.Fatal("failed to init user directory", zap.Error(err))
	}

	hub := chat.NewHub(log, store)
	srv := server.New(*httpAddr, cfg.AllowedOrigins, hub, store, dir, log)

	errChan := make(chan error, 2)
	go func() { errChan <- srv.Start() }()

	var tcpSrv *tcp.Server
	if *tcpAddr != "" {
		tcpSrv = tcp.New(*tcpAddr, hub, log)
		go func() { errChan <- tcpSrv.Start() }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	if tcpSrv != nil {
		tcpSrv.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}

	log.Info("server stopped")
}
