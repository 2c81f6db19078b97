package dto

// ClassAnalysisRequest scopes an exam analysis run.
type ClassAnalysisRequest struct {
	GradeID        uint `json:"grade_id" validate:"required,gt=0"`
	AcademicYearID uint `json:"academic_year_id" validate:"required,gt=0"`
	Term           int  `json:"term" validate:"required,min=1,max=4"`
}

// RankedStudentResponse is one row of the class ranking.
type RankedStudentResponse struct {
	StudentID   uint    `json:"student_id"`
	StudentName string  `json:"student_name"`
	Position    int     `json:"position"`
	Total       float64 `json:"total"`
	TotalPoints int     `json:"total_points"`
	Certificate string  `json:"certificate"`
}

// SubjectAverageResponse summarises one subject across the class.
type SubjectAverageResponse struct {
	Subject    string  `json:"subject"`
	MeanScore  float64 `json:"mean_score"`
	MeanPoints float64 `json:"mean_points,omitempty"`
}

// ClassAnalysisResponse is the ranked view of one grade for one exam
// context.
type ClassAnalysisResponse struct {
	GradeID          uint                     `json:"grade_id"`
	GradeName        string                   `json:"grade_name"`
	Term             int                      `json:"term"`
	Students         []RankedStudentResponse  `json:"students"`
	SubjectAverages  []SubjectAverageResponse `json:"subject_averages"`
	CertificateCount map[string]int           `json:"certificate_count"`
}
