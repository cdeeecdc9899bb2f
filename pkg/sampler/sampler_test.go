package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/user/trackviz/pkg/pipeline"
)

func TestSample_EvenSpacing(t *testing.T) {
	indices, err := Sample(100, 10)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	expected := []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}
	if len(indices) != len(expected) {
		t.Fatalf("expected %d indices, got %d", len(expected), len(indices))
	}
	for i, idx := range expected {
		if indices[i] != idx {
			t.Errorf("indices[%d]: expected %d, got %d", i, idx, indices[i])
		}
	}
}

func TestSample_Properties(t *testing.T) {
	// For all n >= 1 and 1 <= budget <= n, Sample returns exactly budget
	// strictly increasing indices in [0, n), the first of which is 0.
	for n := 1; n <= 200; n += 7 {
		for budget := 1; budget <= n; budget += 3 {
			indices, err := Sample(n, budget)
			if err != nil {
				t.Fatalf("Sample(%d, %d) failed: %v", n, budget, err)
			}
			if len(indices) != budget {
				t.Fatalf("Sample(%d, %d): expected %d indices, got %d", n, budget, budget, len(indices))
			}
			if indices[0] != 0 {
				t.Fatalf("Sample(%d, %d): first index is %d, expected 0", n, budget, indices[0])
			}
			for i := 1; i < len(indices); i++ {
				if indices[i] <= indices[i-1] {
					t.Fatalf("Sample(%d, %d): indices not strictly increasing at %d", n, budget, i)
				}
			}
			if last := indices[len(indices)-1]; last >= n {
				t.Fatalf("Sample(%d, %d): index %d out of range", n, budget, last)
			}
		}
	}
}

func TestSample_UnsetBudgetPassesThroughAllFrames(t *testing.T) {
	indices, err := Sample(30, 0)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(indices) != 30 {
		t.Fatalf("expected 30 indices, got %d", len(indices))
	}
	for i, idx := range indices {
		if idx != i {
			t.Errorf("indices[%d]: expected %d, got %d", i, i, idx)
		}
	}
}

func TestSample_BudgetLargerThanFrameCountIsClamped(t *testing.T) {
	// The naive stride formula would degenerate to stride 0 here; the
	// budget is clamped to the frame count instead.
	indices, err := Sample(5, 12)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(indices) != 5 {
		t.Fatalf("expected 5 indices, got %d", len(indices))
	}
	seen := map[int]bool{}
	for _, idx := range indices {
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
}

func TestStage_Execute(t *testing.T) {
	var stage pipeline.Stage[Input, []int] = NewStage()

	indices, err := stage.Execute(context.Background(), Input{FrameCount: 12, Budget: 4})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	expected := []int{0, 3, 6, 9}
	if len(indices) != len(expected) {
		t.Fatalf("expected %d indices, got %d", len(expected), len(indices))
	}
	for i, idx := range expected {
		if indices[i] != idx {
			t.Errorf("indices[%d]: expected %d, got %d", i, idx, indices[i])
		}
	}
}

func TestSample_Errors(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		budget  int
		wantErr error
	}{
		{name: "zero frames", n: 0, budget: 5, wantErr: ErrNoFrames},
		{name: "negative frames", n: -1, budget: 5, wantErr: ErrNoFrames},
		{name: "negative budget", n: 10, budget: -1, wantErr: ErrBadBudget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sample(tt.n, tt.budget)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
