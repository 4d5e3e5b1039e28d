package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agentfront/internal/agentfront"
)

func main() {
	var configPath string
	var uninstall bool
	flag.StringVar(&configPath, "config", getenvDefault("AGENTFRONT_CONFIG", "/agentfront.yaml"), "path to agentfront.yaml")
	flag.BoolVar(&uninstall, "uninstall", false, "remove installed agent endpoints and exit")
	flag.Parse()

	cfg, err := agentfront.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	svc, err := agentfront.NewService(cfg)
	if err != nil {
		log.Fatalf("init service: %v", err)
	}
	defer svc.Close()

	if uninstall {
		svc.UninstallEndpoints()
		return
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen %s: %v", addr, err)
	}

	srv := &http.Server{
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("agentfront listening on %s, origin=%s", addr, cfg.Server.Origin)
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
			stop()
		}
	}()

	// The listener is up before installing, so probes through the public URL
	// can reach this process.
	installCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	svc.InstallEndpoints(installCtx)
	cancel()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenvDefault(name, def string) string {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	return v
}
