package store

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewRun(t *testing.T) {
	run := createTestRun()

	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("ID is not a UUID: %v", err)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if other := createTestRun(); other.ID == run.ID {
		t.Error("Two runs got the same ID")
	}
	if got := run.Duration(); got != 3*time.Second {
		t.Errorf("Duration: expected 3s, got %v", got)
	}

	run.FinishedAt = time.Time{}
	if got := run.Duration(); got != 0 {
		t.Errorf("Unfinished run duration: expected 0, got %v", got)
	}
}

func TestRun_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Run)
		field  string
	}{
		{"valid", func(r *Run) {}, ""},
		{"empty id", func(r *Run) { r.ID = "" }, "ID"},
		{"bad id", func(r *Run) { r.ID = "run-1" }, "ID"},
		{"zero created", func(r *Run) { r.CreatedAt = time.Time{} }, "CreatedAt"},
		{"finished before created", func(r *Run) { r.FinishedAt = r.CreatedAt.Add(-time.Second) }, "FinishedAt"},
		{"nil suite", func(r *Run) { r.Suite = nil }, "Suite"},
		{"empty kind", func(r *Run) { r.Problems[0].Kind = "" }, "Problems[0].Kind"},
		{"no reports", func(r *Run) { r.Problems[0].Performances = nil }, "Problems[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := createTestRun()
			tt.mutate(run)
			err := run.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Expected valid run, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestRun_ToInfo(t *testing.T) {
	run := createTestRun()
	info := run.ToInfo()

	if info.ID != run.ID {
		t.Errorf("ID mismatch: expected %s, got %s", run.ID, info.ID)
	}
	if len(info.Seeds) != 2 || info.Seeds[0] != 5 || info.Seeds[1] != 10 {
		t.Errorf("Seeds mismatch: got %v", info.Seeds)
	}
	if len(info.Problems) != 1 || info.Problems[0] != "knapsack" {
		t.Errorf("Problems mismatch: got %v", info.Problems)
	}
}

func TestRun_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(createTestRun())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	for _, field := range []string{`"id"`, `"createdAt"`, `"suite"`, `"problems"`, `"performances"`, `"meanFitness"`} {
		if !strings.Contains(s, field) {
			t.Errorf("Expected JSON to contain %s", field)
		}
	}
	if strings.Contains(s, `"optimizations":null`) {
		t.Error("Skipped sweep should be omitted")
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{RunID: "abc"}
	if err.Error() != "run not found: abc" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if ErrNotFound.Error() != "run not found" {
		t.Errorf("Unexpected message: %s", ErrNotFound.Error())
	}
}
