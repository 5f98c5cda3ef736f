package port_reader

import (
	"io"
	"regexp"
	"sync"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
)

type P1Reader struct {
	port          string
	baudrate      uint
	serialPort    io.ReadWriteCloser
	latestReading *interpreter.RawGasReading
	readingMutex  sync.RWMutex
	stopSignal    chan struct{}
	stopOnce      sync.Once

	// Called for every telegram with its parse result
	observe func(result TelegramResult)
}

// TelegramResult tells what happened to a received telegram.
type TelegramResult string

const (
	TelegramValid      TelegramResult = "valid"
	TelegramInvalidCRC TelegramResult = "invalid_crc"
	TelegramNoGas      TelegramResult = "no_gas"
)

// Pre-compiled regex patterns
var (
	timestampPattern = regexp.MustCompile(`0-0:1\.0\.0\((\d{12})([WS])\)`)
	// 24.2.1 on DSMR 4/5 meters, 24.2.3 on Belgian meters
	gasConsumptionPattern = regexp.MustCompile(`0-1:24\.2\.[13]\((\d{12})([WS])\)\((\d+\.\d+)\*m3\)`)
	switchGasPattern      = regexp.MustCompile(`0-1:24\.4\.0\((\d+)\)`)
	meterSerialGasPattern = regexp.MustCompile(`0-1:96\.1\.1\(([A-Fa-f0-9]+)\)`)
)
