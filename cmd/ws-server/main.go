package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"signaling-server/internal/api"
	"signaling-server/internal/api/router"
	"signaling-server/internal/call"
	"signaling-server/internal/database"
	"signaling-server/internal/env"
	"signaling-server/internal/logging"
	"signaling-server/internal/queue"
	"signaling-server/internal/service/auth"
	"signaling-server/internal/service/directory"
	"signaling-server/internal/websocket"
)

func main() {
	cfg, err := env.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg env.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	names := directory.NewWithRepository(nil, log, nil)
	if cfg.DirectoryEnabled() {
		db, err := database.NewDatabase(ctx, database.Options{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSID,
			SecretAccessKey: cfg.AWSSecret,
			SessionToken:    cfg.AWSToken,
			Endpoint:        cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return err
		}
		names = directory.New(db, cfg.UsersTable, log)
	} else {
		log.Info("user directory disabled, display names fall back to email")
	}

	var sink call.LifecycleSink = call.NopSink{}
	eventQueue := queue.NewRequestQueueManager(cfg.EventQueueSize, cfg.EventWorkers, log)
	defer eventQueue.Shutdown()
	if cfg.RedisEnabled() {
		redisClient := websocket.NewRedisClient(cfg.ChatRedisURL, cfg.ChatRedisPass)
		defer redisClient.Close()
		sink = websocket.NewRedisPublisher(redisClient, cfg.EventsChannel, eventQueue, log)
	} else {
		log.Info("redis disabled, lifecycle events are not published")
	}

	hub := websocket.NewHub(call.NewManager(log, sink, nil), log)
	go hub.Run(ctx)

	handler := websocket.NewHandler(hub, cfg.AllowedOrigins, websocket.ClientOptions{
		ReadLimit:    cfg.ReadLimit,
		WriteTimeout: cfg.WriteTimeout,
		PongWait:     cfg.PongWait,
		PingInterval: cfg.PingInterval,
		SendBuffer:   cfg.SendBuffer,
	}, log)

	requestQueue := queue.NewRequestQueueManager(cfg.HTTPQueueSize, cfg.HTTPWorkers, log)
	defer requestQueue.Shutdown()

	server := api.NewAPIServer(
		cfg.ListenAddr,
		requestQueue,
		handler,
		auth.New(cfg.UserSecret, cfg.UserCollection, names),
		cfg.AllowedOrigins,
		log,
		router.UtilsRoutes("/api/ws/v1"),
		router.SignalingRoutes("/api/ws/v1"),
	)

	err := server.Run(ctx)
	cancel()
	<-hub.Stopped()
	return err
}
