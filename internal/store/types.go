package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/randopt/internal/config"
	"github.com/cwbudde/randopt/internal/experiment"
)

// Run is one invocation of the benchmark: the resolved suite and the
// reports of every problem it ran.
type Run struct {
	// ID is a random UUID assigned by NewRun.
	ID string `json:"id"`

	// CreatedAt is when the run started.
	CreatedAt time.Time `json:"createdAt"`

	// FinishedAt is zero while the run is in progress.
	FinishedAt time.Time `json:"finishedAt,omitempty"`

	// Suite is the configuration the run used, needed to replot or repeat it.
	Suite *config.Suite `json:"suite"`

	Problems []ProblemRun `json:"problems"`
}

// ProblemRun holds the reports of one problem. Either report may be nil
// when its sweep was skipped.
type ProblemRun struct {
	Kind          string                         `json:"kind"`
	PlotName      string                         `json:"plotName"`
	PlotYLabel    string                         `json:"plotYLabel"`
	Optimizations *experiment.OptimizationReport `json:"optimizations,omitempty"`
	Performances  *experiment.PerformanceReport  `json:"performances,omitempty"`
	Plots         []string                       `json:"plots,omitempty"`
}

// RunInfo is run metadata without the reports, for listings.
type RunInfo struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	Problems   []string  `json:"problems"`
	Seeds      []int64   `json:"seeds"`
}

// NewRun starts a run record for suite with a fresh ID.
func NewRun(suite *config.Suite) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Suite:     suite,
	}
}

// Duration is the wall time of a finished run, or zero.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}

// ToInfo converts a full Run to RunInfo (metadata only).
func (r *Run) ToInfo() RunInfo {
	info := RunInfo{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.Suite != nil {
		info.Seeds = r.Suite.Seeds
	}
	for _, p := range r.Problems {
		info.Problems = append(info.Problems, p.Kind)
	}
	return info
}

// Validate checks if the run has valid data.
func (r *Run) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return &ValidationError{Field: "ID", Reason: fmt.Sprintf("is not a UUID: %v", err)}
	}
	if r.CreatedAt.IsZero() {
		return &ValidationError{Field: "CreatedAt", Reason: "cannot be zero"}
	}
	if !r.FinishedAt.IsZero() && r.FinishedAt.Before(r.CreatedAt) {
		return &ValidationError{Field: "FinishedAt", Reason: "cannot be before CreatedAt"}
	}
	if r.Suite == nil {
		return &ValidationError{Field: "Suite", Reason: "cannot be nil"}
	}
	for i, p := range r.Problems {
		if p.Kind == "" {
			return &ValidationError{Field: fmt.Sprintf("Problems[%d].Kind", i), Reason: "cannot be empty"}
		}
		if p.Optimizations == nil && p.Performances == nil {
			return &ValidationError{Field: fmt.Sprintf("Problems[%d]", i), Reason: "has no reports"}
		}
	}
	return nil
}

// ValidationError represents a run validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
