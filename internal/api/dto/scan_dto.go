package dto

// DeadlineScanResponse reports one scanner run.
type DeadlineScanResponse struct {
	ProcessedCount int      `json:"processed_count"`
	QuestionIDs    []string `json:"question_ids"`
	SkippedCount   int      `json:"skipped_count"`
	FailedCount    int      `json:"failed_count"`
}
