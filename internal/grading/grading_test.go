package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func scoresFrom(values ...float64) []SubjectScore {
	subjects := []string{
		"Mathematics", "Science", "Geography", "History",
		"Civics", "Art", "Music", "Agriculture",
	}
	scores := make([]SubjectScore, 0, len(values))
	for i, v := range values {
		scores = append(scores, SubjectScore{Subject: subjects[i], Score: v})
	}
	return scores
}

func TestJuniorTakesSixBestOfSeven(t *testing.T) {
	outcome := Certify(SectionJuniorSecondary, scoresFrom(90, 85, 80, 75, 70, 65, 10))

	require.Equal(t, float64(465), outcome.Total)
	require.Equal(t, CertificateSC, outcome.Certificate)
	require.Zero(t, outcome.TotalPoints)
	for _, p := range outcome.Points {
		require.Zero(t, p.Points)
	}
}

func TestJuniorBelowThresholdGetsSOR(t *testing.T) {
	outcome := Certify(SectionJuniorSecondary, scoresFrom(50, 40, 30, 20, 10, 5))

	require.Equal(t, float64(155), outcome.Total)
	require.Equal(t, CertificateSOR, outcome.Certificate)
}

func TestJuniorDegradesWithFewerThanSixSubjects(t *testing.T) {
	outcome := Certify(SectionJuniorSecondary, scoresFrom(80, 70, 60))
	require.Equal(t, float64(210), outcome.Total)
	require.Equal(t, CertificateSOR, outcome.Certificate)
}

func TestJuniorStableTieBreak(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "Mathematics", Score: 70},
		{Subject: "Science", Score: 70},
		{Subject: "Geography", Score: 70},
		{Subject: "History", Score: 70},
		{Subject: "Civics", Score: 70},
		{Subject: "Art", Score: 70},
		{Subject: "Music", Score: 70},
	}
	outcome := Certify(SectionJuniorSecondary, scores)
	require.Equal(t, float64(420), outcome.Total)
}

func TestPointGradeTable(t *testing.T) {
	cases := map[float64]int{
		100: 1, 80: 1, 79: 2, 75: 2, 74: 3, 73: 4, 65: 4,
		64: 5, 60: 5, 59: 6, 55: 6, 54: 7, 50: 7, 49: 8,
		45: 8, 44: 9, 0: 9,
	}
	for score, expected := range cases {
		require.Equal(t, expected, PointGrade(score), "score %v", score)
	}
}

func TestSeniorRequiresBothConditionsForSC(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "English", Score: 85},
		{Subject: "Mathematics", Score: 80},
		{Subject: "Biology", Score: 70},
		{Subject: "Chemistry", Score: 60},
		{Subject: "Physics", Score: 50},
		{Subject: "Geography", Score: 45},
	}

	outcome := Certify(SectionSeniorSecondary, scores)

	require.Equal(t, float64(85+80+70+60+50+45), outcome.Total)
	// English 85 -> 1, others -> 1, 4, 5, 7, 8.
	require.Equal(t, 26, outcome.TotalPoints)
	// English point grade is fine, but 26 < 37 means no school certificate.
	require.Equal(t, CertificateGCE, outcome.Certificate)
}

func TestSeniorCertificateWhenBothConditionsHold(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "English", Score: 45},
		{Subject: "Mathematics", Score: 40},
		{Subject: "Biology", Score: 40},
		{Subject: "Chemistry", Score: 40},
		{Subject: "Physics", Score: 40},
		{Subject: "Geography", Score: 40},
	}

	outcome := Certify(SectionSeniorSecondary, scores)

	// English -> 8, five others -> 9 each: 8 + 45 = 53 >= 37 with English <= 8.
	require.Equal(t, 53, outcome.TotalPoints)
	require.Equal(t, CertificateSC, outcome.Certificate)
}

func TestSeniorWeakEnglishBlocksCertificate(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "English", Score: 20},
		{Subject: "Mathematics", Score: 40},
		{Subject: "Biology", Score: 40},
		{Subject: "Chemistry", Score: 40},
		{Subject: "Physics", Score: 40},
		{Subject: "Geography", Score: 40},
	}

	outcome := Certify(SectionSeniorSecondary, scores)

	require.Equal(t, 54, outcome.TotalPoints)
	require.Equal(t, CertificateGCE, outcome.Certificate)
}

func TestSeniorMissingEnglishCountsAsZero(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "Mathematics", Score: 90},
		{Subject: "Biology", Score: 90},
	}

	outcome := Certify(SectionSeniorSecondary, scores)

	require.Equal(t, float64(180), outcome.Total)
	// English missing -> score 0 -> point grade 9.
	require.Equal(t, 9+1+1, outcome.TotalPoints)
	require.Equal(t, CertificateGCE, outcome.Certificate)
}

func TestSeniorDegradesWithFewerThanFiveOthers(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "English", Score: 80},
		{Subject: "Mathematics", Score: 75},
	}

	outcome := Certify(SectionSeniorSecondary, scores)
	require.Equal(t, float64(155), outcome.Total)
	require.Equal(t, 3, outcome.TotalPoints)
}

func TestPrimarySumsEverything(t *testing.T) {
	outcome := Certify(SectionPrimary, scoresFrom(50, 60, 70))

	require.Equal(t, float64(180), outcome.Total)
	require.Equal(t, CertificateNA, outcome.Certificate)
}

func TestAbsentContributesZeroButStaysRecorded(t *testing.T) {
	scores := []SubjectScore{
		{Subject: "Mathematics", Score: 90},
		{Subject: "Science", Score: 47, Absent: true},
	}

	outcome := Certify(SectionPrimary, scores)

	require.Equal(t, float64(90), outcome.Total)
	require.True(t, outcome.Scores[1].Absent)
}
