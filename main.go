package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"splitbook/controllers"
	"splitbook/jobs"
	_ "splitbook/providers/chain"
	_ "splitbook/providers/gateway"
	"splitbook/routes"
	"splitbook/services"
	"splitbook/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("no .env file loaded, relying on process environment")
	}

	rate := 7.2
	if raw := os.Getenv("EXCHANGE_RATE_DEFAULT"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			rate = parsed
		} else {
			log.Warnf("invalid EXCHANGE_RATE_DEFAULT %q, using %.2f", raw, rate)
		}
	}

	st := store.New(rate)
	ledger := services.NewLedger(st)
	handler := controllers.New(ledger)

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}

	app := fiber.New()
	routes.Setup(app, handler)
	scheduler := jobs.StartSyncScheduler(ledger)

	addr := fmt.Sprintf("%s:%s", host, port)
	log.Infof("server running at %s", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("gracefully shutting down...")
	scheduler.Stop()
	if err := app.Shutdown(); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Info("server exited cleanly")
}
