package model

import "time"

// Recommendation is the advisory verdict for one stock.
type Recommendation string

const (
	RecommendBuy   Recommendation = "BUY"
	RecommendSell  Recommendation = "SELL"
	RecommendError Recommendation = "ERROR"
)

// Valid reports whether r is a member of the closed recommendation set.
func (r Recommendation) Valid() bool {
	switch r {
	case RecommendBuy, RecommendSell, RecommendError:
		return true
	}
	return false
}

// AnalysisResult is the structured outcome of one advisory call.
type AnalysisResult struct {
	Code           string
	Name           string
	AnalysisDate   time.Time
	Analysis       string // model narrative, trailing JSON stripped
	Recommendation Recommendation
	Confidence     float64
	Summary        string
	CreatedAt      time.Time
}

// JobStatus is the lifecycle state of an analysis job.
type JobStatus string

const (
	JobRunning JobStatus = "RUNNING"
	JobDone    JobStatus = "DONE"
	JobFailed  JobStatus = "FAILED"
)

// AnalysisJob tracks one asynchronous analysis run. Results are set only
// when the status is DONE, ErrMsg only when FAILED. A job transitions out
// of RUNNING exactly once and never reverts.
type AnalysisJob struct {
	ID      string
	Status  JobStatus
	Results []*AnalysisResult
	ErrMsg  string
}
