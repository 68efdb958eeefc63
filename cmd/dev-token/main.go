// Command dev-token mints a signed handshake token for local testing and can
// seed the user's display name in the directory table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"signaling-server/internal/database"
	"signaling-server/internal/env"
	internaljwt "signaling-server/internal/jwt"
	"signaling-server/internal/logging"
	"signaling-server/internal/service/directory"
)

func main() {
	var (
		userID = flag.String("user", "", "user id placed in the token (required)")
		email  = flag.String("email", "", "email claim")
		name   = flag.String("name", "", "display name to store in the directory table")
		ttl    = flag.Duration("ttl", time.Hour, "token lifetime")
	)
	flag.Parse()

	cfg, err := env.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, "text")

	if *userID == "" {
		log.Error("-user is required")
		os.Exit(2)
	}

	if *name != "" {
		if err := seedDirectory(cfg, log, *userID, *email, *name); err != nil {
			log.Error("seed directory", "error", err)
			os.Exit(1)
		}
	}

	token, err := internaljwt.CreateToken(cfg.UserSecret, internaljwt.User{
		Id:           *userID,
		Email:        *email,
		CollectionID: cfg.UserCollection,
	}, time.Now().Add(*ttl).Unix())
	if err != nil {
		log.Error("create token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func seedDirectory(cfg env.Config, log *slog.Logger, userID, email, name string) error {
	if !cfg.DirectoryEnabled() {
		return fmt.Errorf("AWS_REGION is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

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
	if err := directory.New(db, cfg.UsersTable, log).SaveUser(ctx, userID, email, name); err != nil {
		return err
	}
	log.Info("directory entry saved", "user_id", userID, "table", cfg.UsersTable)
	return nil
}
