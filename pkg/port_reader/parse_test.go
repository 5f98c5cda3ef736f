package port_reader

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const telegramBody = "/FLU5\\253770234_A\r\n" +
	"\r\n" +
	"0-0:96.1.4(50217)\r\n" +
	"0-0:1.0.0(240305101502W)\r\n" +
	"1-0:1.8.1(000123.456*kWh)\r\n" +
	"0-1:24.1.0(003)\r\n" +
	"0-1:96.1.1(4730303339303031363532303530323136)\r\n" +
	"0-1:24.4.0(1)\r\n" +
	"0-1:24.2.3(240305101000W)(01234.567*m3)\r\n" +
	"!"

// withCRC appends the checksum line the way the meter sends it.
func withCRC(body string) string {
	return body + telegramChecksum(body) + "\r\n"
}

func TestValidateCRC(t *testing.T) {
	telegram := withCRC(telegramBody)
	assert.True(t, validateCRC(telegram))
	assert.True(t, validateCRC(body(telegram)+strings.ToLower(telegramChecksum(telegramBody))+"\r\n"))

	assert.False(t, validateCRC(strings.Replace(telegram, "01234.567", "01234.568", 1)))
	assert.False(t, validateCRC(telegramBody))
	assert.False(t, validateCRC(telegramBody+"12"))
}

func body(telegram string) string {
	return telegram[:strings.Index(telegram, "!")+1]
}

func TestParseTelegram(t *testing.T) {
	reading, result := parseTelegram(withCRC(telegramBody), time.Now())
	require.Equal(t, TelegramValid, result)
	assert.Equal(t, &interpreter.RawGasReading{
		Timestamp:        "2024-03-05T09:15:02Z",
		GasTimestamp:     "2024-03-05T09:10:00Z",
		GasConsumptionM3: 1234.567,
		SwitchGas:        1,
		MeterSerialGas:   "G0039001652050216",
	}, reading)
}

func TestParseTelegramSummerTime(t *testing.T) {
	summer := strings.NewReplacer(
		"240305101502W", "240705101502S",
		"0-1:24.2.3(240305101000W)", "0-1:24.2.1(240705101000S)",
	).Replace(telegramBody)

	reading, result := parseTelegram(withCRC(summer), time.Now())
	require.Equal(t, TelegramValid, result)
	assert.Equal(t, "2024-07-05T08:15:02Z", reading.Timestamp)
	assert.Equal(t, "2024-07-05T08:10:00Z", reading.GasTimestamp)
}

func TestParseTelegramRejects(t *testing.T) {
	_, result := parseTelegram(telegramBody+"0000\r\n", time.Now())
	assert.Equal(t, TelegramInvalidCRC, result)

	noGas := strings.Replace(telegramBody, "0-1:24.2.3(240305101000W)(01234.567*m3)\r\n", "", 1)
	_, result = parseTelegram(withCRC(noGas), time.Now())
	assert.Equal(t, TelegramNoGas, result)
}

func TestParseTelegramWithoutTimestamp(t *testing.T) {
	noTime := strings.Replace(telegramBody, "0-0:1.0.0(240305101502W)\r\n", "", 1)
	receivedAt := time.Date(2024, time.March, 5, 9, 15, 3, 0, time.UTC)

	reading, result := parseTelegram(withCRC(noTime), receivedAt)
	require.Equal(t, TelegramValid, result)
	assert.Equal(t, "2024-03-05T09:15:03Z", reading.Timestamp)
}

func TestReadLoop(t *testing.T) {
	stream := "garbage before the first header\r\n" +
		withCRC(telegramBody) +
		telegramBody + "FFFF\r\n" +
		withCRC(strings.Replace(telegramBody, "01234.567", "01234.600", 1))

	p := NewP1Reader("/dev/null", 115200)
	var mu sync.Mutex
	var results []TelegramResult
	p.OnTelegram(func(result TelegramResult) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, result)
	})

	readings := make(chan *interpreter.RawGasReading, 3)
	err := p.readLoop(bufio.NewReader(strings.NewReader(stream)), func(r *interpreter.RawGasReading) {
		readings <- r
	})
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []TelegramResult{TelegramValid, TelegramInvalidCRC, TelegramValid}, results)
	assert.Equal(t, 1234.6, p.GetLatestReading().GasConsumptionM3)

	for i := 0; i < 2; i++ {
		select {
		case <-readings:
		case <-time.After(time.Second):
			t.Fatal("reading was not handled")
		}
	}
}

func TestStopReading(t *testing.T) {
	p := NewP1Reader("/dev/null", 115200)
	p.StopReading()
	p.StopReading()

	err := p.readLoop(bufio.NewReader(strings.NewReader(withCRC(telegramBody))), func(*interpreter.RawGasReading) {
		t.Error("no reading expected after stop")
	})
	assert.NoError(t, err)
}
