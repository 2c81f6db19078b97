// Package grading contains the pure score-aggregation rules used for report
// cards and exam analysis. Functions here never touch the database so the
// certification rules stay testable in isolation.
package grading

import "sort"

// Section selects which certification rule variant applies to a grade.
type Section string

const (
	// SectionPrimary covers primary and any non-secondary grades.
	SectionPrimary Section = "PRIMARY"
	// SectionJuniorSecondary covers junior secondary grades.
	SectionJuniorSecondary Section = "JUNIOR_SECONDARY"
	// SectionSeniorSecondary covers senior secondary grades.
	SectionSeniorSecondary Section = "SENIOR_SECONDARY"
)

// Certificate classifications produced by the rules.
const (
	CertificateSC  = "SC"
	CertificateGCE = "GCE"
	CertificateSOR = "SOR"
	CertificateNA  = "N/A"
)

// English is always counted for senior secondary certification.
const mandatorySubject = "English"

const (
	juniorBestSubjects = 6
	seniorBestSubjects = 5

	juniorCertificateThreshold = 300
	seniorPointsThreshold      = 37
	seniorEnglishMaxPoints     = 8
)

// SubjectScore is one subject's raw score for a single student and exam
// context. Absent is recorded distinctly from a real zero but contributes 0
// to every aggregate.
type SubjectScore struct {
	Subject string
	Score   float64
	Absent  bool
}

// SubjectPoint pairs a subject with its examination-board point grade.
type SubjectPoint struct {
	Subject string
	Points  int
}

// Outcome is the certified aggregate for one student in one exam context.
// It is derived fresh from stored scores on every computation and never
// persisted, so later score edits cannot leave a stale certification behind.
type Outcome struct {
	Scores      []SubjectScore
	Points      []SubjectPoint
	Total       float64
	TotalPoints int
	Certificate string
}

// PointGrade maps a raw score to the senior-secondary examination-board
// point scale, where 1 is best and 9 is worst.
func PointGrade(score float64) int {
	switch {
	case score >= 80:
		return 1
	case score >= 75:
		return 2
	case score >= 74:
		return 3
	case score >= 65:
		return 4
	case score >= 60:
		return 5
	case score >= 55:
		return 6
	case score >= 50:
		return 7
	case score >= 45:
		return 8
	default:
		return 9
	}
}

// Certify applies the section's certification rules to the provided subject
// scores. The input order is significant: ties between equal scores are
// broken by original position. When fewer subjects are available than the
// rule's best-N count, the selection degrades to all available subjects.
func Certify(section Section, scores []SubjectScore) Outcome {
	switch section {
	case SectionJuniorSecondary:
		return certifyJunior(scores)
	case SectionSeniorSecondary:
		return certifySenior(scores)
	default:
		return certifyPrimary(scores)
	}
}

func certifyPrimary(scores []SubjectScore) Outcome {
	outcome := Outcome{
		Scores:      scores,
		Points:      zeroPoints(scores),
		Certificate: CertificateNA,
	}
	for _, s := range scores {
		outcome.Total += effectiveScore(s)
	}
	return outcome
}

func certifyJunior(scores []SubjectScore) Outcome {
	best := selectBest(scores, juniorBestSubjects)

	outcome := Outcome{
		Scores: scores,
		Points: zeroPoints(scores),
	}
	for _, s := range best {
		outcome.Total += effectiveScore(s)
	}

	if outcome.Total >= juniorCertificateThreshold {
		outcome.Certificate = CertificateSC
	} else {
		outcome.Certificate = CertificateSOR
	}
	return outcome
}

func certifySenior(scores []SubjectScore) Outcome {
	english := SubjectScore{Subject: mandatorySubject}
	others := make([]SubjectScore, 0, len(scores))
	for _, s := range scores {
		if s.Subject == mandatorySubject {
			english = s
			continue
		}
		others = append(others, s)
	}

	best := selectBest(others, seniorBestSubjects)

	englishScore := effectiveScore(english)
	englishPoints := PointGrade(englishScore)

	outcome := Outcome{
		Scores:      scores,
		Total:       englishScore,
		TotalPoints: englishPoints,
		Points:      make([]SubjectPoint, 0, len(best)+1),
	}
	outcome.Points = append(outcome.Points, SubjectPoint{Subject: mandatorySubject, Points: englishPoints})

	for _, s := range best {
		score := effectiveScore(s)
		points := PointGrade(score)
		outcome.Total += score
		outcome.TotalPoints += points
		outcome.Points = append(outcome.Points, SubjectPoint{Subject: s.Subject, Points: points})
	}

	if outcome.TotalPoints >= seniorPointsThreshold && englishPoints <= seniorEnglishMaxPoints {
		outcome.Certificate = CertificateSC
	} else {
		outcome.Certificate = CertificateGCE
	}
	return outcome
}

// selectBest returns the n highest-scoring entries, preserving original
// order between equal scores. Fewer than n entries returns them all.
func selectBest(scores []SubjectScore, n int) []SubjectScore {
	candidates := make([]SubjectScore, len(scores))
	copy(candidates, scores)

	sort.SliceStable(candidates, func(i, j int) bool {
		return effectiveScore(candidates[i]) > effectiveScore(candidates[j])
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

func effectiveScore(s SubjectScore) float64 {
	if s.Absent {
		return 0
	}
	return s.Score
}

func zeroPoints(scores []SubjectScore) []SubjectPoint {
	points := make([]SubjectPoint, 0, len(scores))
	for _, s := range scores {
		points = append(points, SubjectPoint{Subject: s.Subject})
	}
	return points
}
