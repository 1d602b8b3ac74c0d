package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/catalyst/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(context.Background(), cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	errs := make(chan error, 1)
	if err := srv.Start(errs); err != nil {
		log.Fatal("server start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exit := 0
	select {
	case <-sigChan:
	case <-errs:
		exit = 1
	}

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Println("shutdown:", err)
		exit = 1
	}
	os.Exit(exit)
}
