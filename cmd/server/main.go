package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/emotionwave/internal/api"
	"github.com/JaimeStill/emotionwave/internal/config"
	"github.com/JaimeStill/emotionwave/internal/infrastructure"
	"github.com/JaimeStill/emotionwave/pkg/openapi"
)

func main() {
	specFile := flag.String("openapi", "", "Write the OpenAPI document to this file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	if *specFile != "" {
		if err := writeSpec(cfg, *specFile); err != nil {
			log.Fatal("openapi generation failed: ", err)
		}
		return
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatal("server start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}

	srv.infra.Logger.Info("emotionwave stopped")
}

func writeSpec(cfg *config.Config, filename string) error {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return err
	}
	runtime := api.NewRuntime(cfg, infra)
	return openapi.WriteJSON(api.BuildSpec(cfg, api.NewDomain(runtime), runtime), filename)
}
