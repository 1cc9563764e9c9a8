package trace

import (
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the activity of a whole run.
type Summary struct {
	Rounds        int     `csv:"rounds"`
	TotalAccepted int     `csv:"total_accepted"`
	MeanAccepted  float64 `csv:"mean_accepted"`
	StdAccepted   float64 `csv:"std_accepted"`
	PeakAccepted  int     `csv:"peak_accepted"`
	PeakRound     int     `csv:"peak_round"`
	FinalMean     float64 `csv:"final_mean"`
}

// Summarize computes a Summary from records in round order.
func Summarize(records []Record) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}
	s.Rounds = len(records)
	accepted := make([]float64, len(records))
	for i, rec := range records {
		accepted[i] = float64(rec.Accepted)
		s.TotalAccepted += rec.Accepted
		if rec.Accepted > s.PeakAccepted {
			s.PeakAccepted, s.PeakRound = rec.Accepted, rec.Round
		}
	}
	s.MeanAccepted, s.StdAccepted = stat.PopMeanStdDev(accepted, nil)
	s.FinalMean = records[len(records)-1].Mean
	return s
}
