package interpreter

import (
	"context"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	maxRetries     = 10
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 60 * time.Second
)

// retryDelay doubles per failed attempt up to maxRetryDelay.
func retryDelay(retryCount int) time.Duration {
	if retryCount > 5 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<retryCount) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// Manage websocket connection and call funcToCall for each gas reading
// until ctx is cancelled or the server stays unreachable.
func StartListener(ctx context.Context, host string, tlsEnabled bool, funcToCall func(reading *RawGasReading)) {
	// WebSocket server URL
	scheme := "ws"
	if tlsEnabled {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: host, Path: "/ws"}

	retryCount := 0

	for {
		if ctx.Err() != nil {
			log.Println("Shutdown requested, stopping listener")
			return
		}

		if retryCount > 0 {
			delay := retryDelay(retryCount)
			log.Printf("Retrying connection in %v... (attempt %d/%d)", delay, retryCount+1, maxRetries)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				log.Println("Shutdown requested during retry wait")
				return
			}
		}

		log.Printf("Connecting to %s", u.String())

		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, _, err := dialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			log.Printf("Connection failed: %v", err)
			retryCount++
			if retryCount >= maxRetries {
				log.Printf("Max retries (%d) reached. Giving up.", maxRetries)
				return
			}
			continue
		}

		log.Println("Connected! Accepting gas readings.")

		// Reset retry count on successful connection
		retryCount = 0

		connectionBroken := handleConnection(ctx, c, funcToCall)
		c.Close()

		if !connectionBroken {
			return
		}

		log.Println("Connection lost, will retry...")
	}
}

func handleConnection(
	ctx context.Context,
	c *websocket.Conn,
	funcToCall func(reading *RawGasReading),
) bool {
	done := make(chan struct{})

	// Telegrams arrive every second
	c.SetReadDeadline(time.Now().Add(10 * time.Second))

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				} else {
					log.Printf("Connection closed: %v", err)
				}
				return
			}

			c.SetReadDeadline(time.Now().Add(10 * time.Second))

			if messageType != websocket.TextMessage {
				log.Printf("Received unexpected message type: %d", messageType)
				continue
			}
			if reading := GasReadingFromJsonBytes(message); reading != nil {
				funcToCall(reading)
			} else {
				log.Printf("Failed to parse gas reading: %s", string(message))
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Printf("Failed to send ping: %v", err)
			}
		case <-ctx.Done():
			log.Println("Shutdown requested, closing connection...")

			err := c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			if err != nil {
				log.Println("Error sending close message:", err)
			}

			// Wait for close confirmation or timeout
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
