package receipt

import (
	"fmt"

	"github.com/zombor/receipt-bot/internal/scanning"
)

// Stage identifies the pipeline step that failed
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageGenerate Stage = "generate"
	StageParse    Stage = "parse"
)

var stageDescriptions = map[Stage]string{
	StageFetch:    "fetching image",
	StageGenerate: "extracting receipt",
	StageParse:    "reading receipt",
}

// ExtractionError wraps a failure with the stage it happened in
type ExtractionError struct {
	Stage Stage
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", stageDescriptions[e.Stage], e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Result is the outcome of extracting one receipt image.
// Exactly one of Receipt and Err is set.
type Result struct {
	Receipt *scanning.ReceiptData
	Err     error
}

// Outcome returns a short label for logs and metrics
func (r Result) Outcome() string {
	if r.Err == nil {
		return "success"
	}
	if extractionErr, ok := r.Err.(*ExtractionError); ok {
		return string(extractionErr.Stage) + "_error"
	}
	return "error"
}
