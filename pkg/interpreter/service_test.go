package interpreter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGasReadingJson(t *testing.T) {
	reading := &RawGasReading{
		Timestamp:        "2024-03-05T10:00:01Z",
		GasTimestamp:     "2024-03-05T10:00:00Z",
		GasConsumptionM3: 10234.567,
		MeterSerialGas:   "G0012345",
	}
	data, err := reading.ToJsonBytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gas_consumption_m3":10234.567`)

	decoded := GasReadingFromJsonBytes(data)
	require.NotNil(t, decoded)
	assert.Equal(t, reading, decoded)

	assert.Nil(t, GasReadingFromJsonBytes([]byte("not json")))
}

func TestGasTime(t *testing.T) {
	reading := &RawGasReading{Timestamp: "2024-03-05T10:00:01Z", GasTimestamp: "2024-03-05T10:00:00Z"}
	at, err := reading.GasTime()
	require.NoError(t, err)
	assert.Equal(t, 0, at.Second())

	reading.GasTimestamp = ""
	at, err = reading.GasTime()
	require.NoError(t, err)
	assert.Equal(t, 1, at.Second())
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryDelay(0))
	assert.Equal(t, 8*time.Second, retryDelay(2))
	assert.Equal(t, maxRetryDelay, retryDelay(5))
	assert.Equal(t, maxRetryDelay, retryDelay(40))
}

func TestStartListener(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"timestamp":"2024-03-05T10:00:01Z","gas_consumption_m3":1.5}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"timestamp":"2024-03-05T10:00:02Z","gas_consumption_m3":1.75}`))
		// Keep the connection open until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan *RawGasReading, 4)
	stopped := make(chan struct{})
	go func() {
		StartListener(ctx, strings.TrimPrefix(server.URL, "http://"), false, func(reading *RawGasReading) {
			received <- reading
		})
		close(stopped)
	}()

	for _, want := range []float64{1.5, 1.75} {
		select {
		case reading := <-received:
			assert.Equal(t, want, reading.GasConsumptionM3)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for reading")
		}
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}
