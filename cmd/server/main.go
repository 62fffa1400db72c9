package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"battlecore/internal/api"
	"battlecore/internal/config"
	"battlecore/internal/ipc"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	log.Println("================================")
	log.Println(" BATTLECORE - COMBAT ENGINE")
	log.Println("================================")

	appConfig := config.Load()

	registry := api.NewRegistry(appConfig)
	server := api.NewServer(registry, appConfig.Limits)

	publisher := ipc.NewPublisher(appConfig.Server.SocketPath, registry)
	if err := publisher.Start(); err != nil {
		log.Fatalf("failed to start ipc publisher: %v", err)
	}

	if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
		log.Fatalf("failed to start debug server: %v", err)
	}

	addr := ":" + strconv.Itoa(appConfig.Server.Port)

	go func() {
		if err := server.Start(addr); err != nil {
			log.Fatalf("http server error: %v", err)
		}
	}()

	log.Printf("combat service ready on %s (max %d concurrent combats)", addr, appConfig.Server.MaxConcurrent)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	server.Stop()
	publisher.Stop()
}
