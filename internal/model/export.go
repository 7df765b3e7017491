package model

import "time"

// BankExport is the top-level JSON structure for a question bank export.
// Its Questions field uses the import format so the file can be re-imported.
type BankExport struct {
	Title        string           `json:"title"`
	ExportedAt   time.Time        `json:"exported_at"`
	NumQuestions int              `json:"num_questions"`
	Questions    []QuestionImport `json:"questions"`
}
