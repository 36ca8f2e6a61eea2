package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinsight/internal/analysis"
	"clinsight/internal/archive"
	"clinsight/internal/catalog"
	"clinsight/internal/gateway/config"
	"clinsight/internal/gateway/handler"
	"clinsight/internal/gateway/server"
	"clinsight/internal/gateway/service/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cat := catalog.NewFromEnv(cfg.CatalogPath)
	cat.EnsureLoaded()
	defer cat.Close()

	var analyzer analysis.Client
	if cfg.Analysis.Enabled {
		analyzer, err = analysis.NewGeminiClient(context.Background(), cfg.Analysis.Model)
		if err != nil {
			log.Fatalf("Failed to init analysis client: %v", err)
		}
		defer analyzer.Close()
	} else {
		log.Printf("No Gemini API key configured; analysis endpoint disabled")
	}

	var arch archive.Store
	if cfg.Archive.Enabled {
		s3, err := archive.NewS3Store(archive.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			log.Printf("Archive disabled: %v", err)
		} else {
			arch = s3
		}
	}

	svc := session.New(cat, analyzer, arch)
	defer svc.Shutdown()

	mux := http.NewServeMux()
	handler.New(svc, cat).Routes(mux)

	srv := server.New(cfg.Port, mux)
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
