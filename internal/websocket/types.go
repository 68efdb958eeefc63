package websocket

import (
	"errors"
	"time"

	"signaling-server/internal/call"
)

var ErrHubStopped = errors.New("websocket: hub stopped")

type ClientOptions struct {
	ReadLimit    int64
	WriteTimeout time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
	SendBuffer   int
}

func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		ReadLimit:    512 * 1024,
		WriteTimeout: 10 * time.Second,
		PongWait:     60 * time.Second,
		PingInterval: 30 * time.Second,
		SendBuffer:   64,
	}
}

type inboundMessage struct {
	client *WSClient
	raw    []byte
}

type query func(*call.Manager)
