package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-service/internal/bootstrap"
	"auth-service/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appCtx, cleanup, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap: %v", err)
	}
	sugar := appCtx.Sugar

	app := server.New(appCtx.Config, appCtx.Handler, appCtx.TokenManager, appCtx.Users, appCtx.Logger)

	go func() {
		addr := fmt.Sprintf(":%d", appCtx.Config.App.Port)
		sugar.Infof("Server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	cleanup(ctx)

	sugar.Info("Graceful shutdown complete")
}
