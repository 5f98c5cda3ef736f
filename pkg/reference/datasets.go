// Package reference provides the published monthly gas usage shares the
// seasonal model is fitted to.
package reference

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/NotCoffee418/gas_usage_estimator/pkg/seasonal"
)

type Source string

const (
	// SourceDIN is the German degree-day table ("Gradtagszahlentabelle")
	// of DIN 4713, https://de.wikipedia.org/wiki/DIN_4713
	SourceDIN Source = "DIN"
	// SourceHistoric is the measured household gas usage in Germany,
	// https://www.smard.de/page/home/topic-article/211972/214592/gasverbrauch
	SourceHistoric Source = "HISTORIC"
)

var ErrUnsupportedDataset = errors.New("unsupported reference dataset")

// Per-mille of yearly heating demand per month.
var dinPerMille = [seasonal.MonthsPerYear]float64{170, 150, 130, 80, 40, 40.0 / 3, 40.0 / 3, 40.0 / 3, 30, 80, 120, 160}

// Monthly household consumption by year, in GWh.
var historicUsage = map[int][seasonal.MonthsPerYear]float64{
	2024: {1191, 1085, 987, 686, 309, 151, 143, 143, 158, 452, 980, 1259},
}

// Dataset is a set of monthly shares together with where they came from.
// Year is 0 for sources that are not tied to a year.
type Dataset struct {
	Source Source                 `json:"source"`
	Year   int                    `json:"year,omitempty"`
	Shares seasonal.MonthlyShares `json:"shares"`
}

func (d Dataset) String() string {
	if d.Year == 0 {
		return string(d.Source)
	}
	return fmt.Sprintf("%s %d", d.Source, d.Year)
}

type UnsupportedDatasetError struct {
	Source         Source
	Year           int
	SupportedYears []int
}

func (e *UnsupportedDatasetError) Error() string {
	if len(e.SupportedYears) == 0 {
		return fmt.Sprintf("reference source %q is not supported, use %s or %s", e.Source, SourceDIN, SourceHistoric)
	}
	return fmt.Sprintf("%s data for year %d is not supported, supported years: %v", e.Source, e.Year, e.SupportedYears)
}

func (e *UnsupportedDatasetError) Is(target error) bool {
	return target == ErrUnsupportedDataset
}

// ParseSource accepts source names case-insensitively.
func ParseSource(name string) (Source, error) {
	switch Source(strings.ToUpper(strings.TrimSpace(name))) {
	case SourceDIN:
		return SourceDIN, nil
	case SourceHistoric:
		return SourceHistoric, nil
	}
	return "", &UnsupportedDatasetError{Source: Source(name)}
}

// SupportedHistoricYears lists the years with historic data, ascending.
func SupportedHistoricYears() []int {
	years := make([]int, 0, len(historicUsage))
	for year := range historicUsage {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Load returns the normalised shares of a source. year is ignored for DIN.
func Load(source Source, year int) (Dataset, error) {
	switch source {
	case SourceDIN:
		var shares seasonal.MonthlyShares
		for month, perMille := range dinPerMille {
			shares[month] = perMille / 1000
		}
		return Dataset{Source: SourceDIN, Shares: shares}, shares.Validate()
	case SourceHistoric:
		usage, ok := historicUsage[year]
		if !ok {
			return Dataset{}, &UnsupportedDatasetError{
				Source:         source,
				Year:           year,
				SupportedYears: SupportedHistoricYears(),
			}
		}
		shares, err := seasonal.SharesFromWeights(usage)
		if err != nil {
			return Dataset{}, err
		}
		return Dataset{Source: SourceHistoric, Year: year, Shares: shares}, nil
	}
	return Dataset{}, &UnsupportedDatasetError{Source: source}
}
