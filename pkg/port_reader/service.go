package port_reader

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

// Initialize a new P1Reader client.
func NewP1Reader(port string, baudrate uint) *P1Reader {
	return &P1Reader{
		port:       port,
		baudrate:   baudrate,
		stopSignal: make(chan struct{}),
		observe:    func(TelegramResult) {},
	}
}

// OnTelegram registers a callback receiving the result of every telegram.
// Must be called before StartReading.
func (p *P1Reader) OnTelegram(observe func(result TelegramResult)) {
	p.observe = observe
}

// Start listening for readings. Messages are sent every second.
// Runs in goroutine. handleReading() also runs in goroutine.
func (p *P1Reader) StartReading(
	handleReading func(reading *interpreter.RawGasReading),
	handleError func(error),
) {
	go func() {
		// Initialize the connection
		if err := p.connect(); err != nil {
			handleError(err)
			return
		}
		defer p.disconnect()

		if err := p.readLoop(bufio.NewReader(p.serialPort), handleReading); err != nil {
			handleError(err)
		}
	}()
}

// readLoop reads telegrams until stopped or until too many consecutive
// errors occurred.
func (p *P1Reader) readLoop(reader *bufio.Reader, handleReading func(reading *interpreter.RawGasReading)) error {
	// Tolerance before we report error.
	consecutiveErrors := 0
	maxErrors := 10
	var lastError error

	for consecutiveErrors < maxErrors {
		select {
		case <-p.stopSignal:
			log.Println("Stop signal received, disconnecting")
			return nil
		default:
		}

		telegram, err := readTelegram(reader)
		if err != nil {
			if err == io.EOF {
				return err
			}
			consecutiveErrors++
			lastError = err
			log.Printf("Error reading telegram (%d/%d): %v", consecutiveErrors, maxErrors, err)
			time.Sleep(time.Second)
			continue
		}

		reading, result := parseTelegram(telegram, time.Now())
		p.observe(result)
		switch result {
		case TelegramInvalidCRC:
			log.Println("Invalid CRC, skipping telegram")
			continue
		case TelegramNoGas:
			log.Debug("Telegram holds no gas reading, skipping")
			consecutiveErrors = 0
			continue
		}

		p.readingMutex.Lock()
		p.latestReading = reading
		p.readingMutex.Unlock()

		go handleReading(reading)
		consecutiveErrors = 0
	}

	log.Printf("Too many consecutive errors (%d), stopping reader: %v", maxErrors, lastError)
	return lastError
}

func (p *P1Reader) StopReading() {
	p.stopOnce.Do(func() { close(p.stopSignal) })
}

func (p *P1Reader) GetLatestReading() *interpreter.RawGasReading {
	p.readingMutex.RLock()
	defer p.readingMutex.RUnlock()
	return p.latestReading
}

// Open the connection to the P1 port.
func (p *P1Reader) connect() error {
	options := serial.OpenOptions{
		PortName:        p.port,
		BaudRate:        p.baudrate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	port, err := serial.Open(options)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	p.serialPort = port
	log.Printf("Connected to P1 port on %s", p.port)
	return nil
}

func (p *P1Reader) disconnect() {
	if p.serialPort != nil {
		p.serialPort.Close()
		log.Println("Disconnected from P1 port")
	}
}

// readTelegram returns the next complete telegram, from the '/' header line
// up to and including the '!' CRC line.
func readTelegram(reader *bufio.Reader) (string, error) {
	var buffer strings.Builder
	var inTelegram bool

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}

		if strings.HasPrefix(line, "/") {
			// Start of telegram
			buffer.Reset()
			buffer.WriteString(line)
			inTelegram = true
		} else if inTelegram {
			buffer.WriteString(line)
			if strings.HasPrefix(strings.TrimSpace(line), "!") {
				// End of telegram
				return buffer.String(), nil
			}
		}
	}
}
