package grading

import "sort"

// RankedOutcome annotates a student's certified outcome with a class
// position.
type RankedOutcome struct {
	StudentID uint
	Outcome   Outcome
	Position  int
}

// SubjectAverage summarises one subject across a ranked class.
type SubjectAverage struct {
	Subject    string
	MeanScore  float64
	MeanPoints float64
}

// ClassSummary is the ranked view of one grade in one exam context.
type ClassSummary struct {
	Ranked           []RankedOutcome
	SubjectAverages  []SubjectAverage
	CertificateCount map[string]int
}

// StudentOutcome pairs a student with their certified outcome prior to
// ranking.
type StudentOutcome struct {
	StudentID uint
	Outcome   Outcome
}

// Rank orders outcomes by total descending and assigns positions 1..n.
// Equal totals receive distinct sequential positions in encounter order
// rather than a shared rank. Subject averages cover every subject that
// appears in at least one outcome; the point mean is only meaningful for
// senior secondary where point grades are computed.
func Rank(outcomes []StudentOutcome) ClassSummary {
	ordered := make([]StudentOutcome, len(outcomes))
	copy(ordered, outcomes)

	// Stable sort keeps encounter order between equal totals, which is what
	// assigns ties their distinct sequential positions.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Outcome.Total > ordered[j].Outcome.Total
	})

	summary := ClassSummary{
		Ranked:           make([]RankedOutcome, 0, len(ordered)),
		CertificateCount: make(map[string]int),
	}

	for i, entry := range ordered {
		summary.Ranked = append(summary.Ranked, RankedOutcome{
			StudentID: entry.StudentID,
			Outcome:   entry.Outcome,
			Position:  i + 1,
		})
		summary.CertificateCount[entry.Outcome.Certificate]++
	}

	summary.SubjectAverages = subjectAverages(ordered)
	return summary
}

type subjectAccumulator struct {
	scoreSum  float64
	scoreN    int
	pointsSum int
	pointsN   int
}

func subjectAverages(outcomes []StudentOutcome) []SubjectAverage {
	order := make([]string, 0)
	acc := make(map[string]*subjectAccumulator)

	for _, entry := range outcomes {
		for _, s := range entry.Outcome.Scores {
			a, ok := acc[s.Subject]
			if !ok {
				a = &subjectAccumulator{}
				acc[s.Subject] = a
				order = append(order, s.Subject)
			}
			a.scoreSum += effectiveScore(s)
			a.scoreN++
		}
		for _, p := range entry.Outcome.Points {
			if p.Points == 0 {
				continue
			}
			a, ok := acc[p.Subject]
			if !ok {
				a = &subjectAccumulator{}
				acc[p.Subject] = a
				order = append(order, p.Subject)
			}
			a.pointsSum += p.Points
			a.pointsN++
		}
	}

	averages := make([]SubjectAverage, 0, len(order))
	for _, subject := range order {
		a := acc[subject]
		avg := SubjectAverage{Subject: subject}
		if a.scoreN > 0 {
			avg.MeanScore = a.scoreSum / float64(a.scoreN)
		}
		if a.pointsN > 0 {
			avg.MeanPoints = float64(a.pointsSum) / float64(a.pointsN)
		}
		averages = append(averages, avg)
	}
	return averages
}
