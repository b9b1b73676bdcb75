package calculator

import (
	"aetherum/internal/domain"
	"errors"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// ErrCorrelationUnavailable means no overlapping daily history existed
// across the requested assets. Callers must treat this as "skip the
// correlation adjustment", never as an all-zero matrix.
var ErrCorrelationUnavailable = errors.New("no overlapping historical data to compute correlations")

// Correlate builds the pairwise Pearson matrix from raw price series.
//
// Each series is resampled to one value per calendar day (mean of that
// day's observations), then all series are inner-joined on date - any date
// where any asset lacks a value is dropped, with no interpolation. Symbols
// with no history at all are excluded up front rather than defaulted.
func Correlate(seriesBySymbol map[string][]domain.PricePoint) (*domain.CorrelationMatrix, error) {
	dailyBySymbol := map[string]map[string]float64{}
	symbols := []string{}
	for symbol, series := range seriesBySymbol {
		if len(series) == 0 {
			continue
		}
		dailyBySymbol[symbol] = resampleDaily(series)
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	if len(symbols) < 2 {
		return nil, ErrCorrelationUnavailable
	}

	// inner join on date across every symbol
	joinedDates := []string{}
	for date := range dailyBySymbol[symbols[0]] {
		onAll := true
		for _, symbol := range symbols[1:] {
			if _, ok := dailyBySymbol[symbol][date]; !ok {
				onAll = false
				break
			}
		}
		if onAll {
			joinedDates = append(joinedDates, date)
		}
	}
	sort.Strings(joinedDates)

	// pearson needs variance, which needs at least two rows
	if len(joinedDates) < 2 {
		return nil, ErrCorrelationUnavailable
	}

	alignedBySymbol := map[string][]float64{}
	for _, symbol := range symbols {
		aligned := make([]float64, 0, len(joinedDates))
		for _, date := range joinedDates {
			aligned = append(aligned, dailyBySymbol[symbol][date])
		}
		alignedBySymbol[symbol] = aligned
	}

	matrix := domain.NewCorrelationMatrix(symbols)
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			coefficient, err := stats.Pearson(alignedBySymbol[symbols[i]], alignedBySymbol[symbols[j]])
			if err != nil {
				return nil, ErrCorrelationUnavailable
			}
			matrix.Set(symbols[i], symbols[j], coefficient)
		}
	}

	return matrix, nil
}

func resampleDaily(series []domain.PricePoint) map[string]float64 {
	sumByDay := map[string]float64{}
	countByDay := map[string]int{}
	for _, point := range series {
		day := point.Timestamp.UTC().Format(time.DateOnly)
		sumByDay[day] += point.Price
		countByDay[day]++
	}

	meanByDay := map[string]float64{}
	for day, sum := range sumByDay {
		meanByDay[day] = sum / float64(countByDay[day])
	}
	return meanByDay
}
