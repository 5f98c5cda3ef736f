package port_reader

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/interpreter"
	"github.com/sigurn/crc16"
)

// CRC16_ARC matches the DSMR specification
var crcTable = crc16.MakeTable(crc16.CRC16_ARC)

// telegramChecksum returns the CRC of everything up to and including '!'.
func telegramChecksum(data string) string {
	return fmt.Sprintf("%04X", crc16.Checksum([]byte(data), crcTable))
}

func validateCRC(telegram string) bool {
	parts := strings.Split(telegram, "!")
	if len(parts) != 2 || len(parts[1]) < 4 {
		return false
	}

	data := parts[0] + "!"
	givenCRC := parts[1][:4]
	return strings.ToUpper(givenCRC) == telegramChecksum(data)
}

// parseMeterTime parses the YYMMDDhhmmss timestamp with its W (winter, CET)
// or S (summer, CEST) suffix.
func parseMeterTime(value, season string) (time.Time, error) {
	offset := 1 * 60 * 60
	if season == "S" {
		offset = 2 * 60 * 60
	}
	return time.ParseInLocation("060102150405", value, time.FixedZone("", offset))
}

// parseTelegram extracts the gas reading from a telegram. receivedAt is used
// when the telegram carries no timestamp of its own.
func parseTelegram(telegram string, receivedAt time.Time) (*interpreter.RawGasReading, TelegramResult) {
	if !validateCRC(telegram) {
		return nil, TelegramInvalidCRC
	}

	match := gasConsumptionPattern.FindStringSubmatch(telegram)
	if match == nil {
		return nil, TelegramNoGas
	}
	consumption, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return nil, TelegramNoGas
	}

	reading := &interpreter.RawGasReading{
		Timestamp:        receivedAt.UTC().Format(time.RFC3339),
		GasConsumptionM3: consumption,
	}
	if t, err := parseMeterTime(match[1], match[2]); err == nil {
		reading.GasTimestamp = t.UTC().Format(time.RFC3339)
	}

	if match := timestampPattern.FindStringSubmatch(telegram); match != nil {
		if t, err := parseMeterTime(match[1], match[2]); err == nil {
			reading.Timestamp = t.UTC().Format(time.RFC3339)
		}
	}

	if match := switchGasPattern.FindStringSubmatch(telegram); match != nil {
		if value, err := strconv.Atoi(match[1]); err == nil {
			reading.SwitchGas = value
		}
	}

	// Serial numbers are hex encoded ASCII
	if match := meterSerialGasPattern.FindStringSubmatch(telegram); match != nil {
		if decoded, err := hex.DecodeString(match[1]); err == nil {
			reading.MeterSerialGas = string(decoded)
		} else {
			reading.MeterSerialGas = match[1]
		}
	}

	return reading, TelegramValid
}
