package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBatchInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   BatchInput
		wantErr string
	}{
		{
			name:    "empty forums",
			input:   BatchInput{Forums: []BatchForum{}},
			wantErr: "forums",
		},
		{
			name: "missing personas",
			input: BatchInput{Forums: []BatchForum{
				{Topic: "free will"},
			}},
			wantErr: "personas",
		},
		{
			name: "unknown mode",
			input: BatchInput{Forums: []BatchForum{
				{Mode: "arguing", Personas: []string{"socrates"}},
			}},
			wantErr: "mode",
		},
		{
			name: "duplicate names",
			input: BatchInput{Forums: []BatchForum{
				{Name: "weekly", Personas: []string{"socrates"}},
				{Name: "weekly", Personas: []string{"kant"}},
			}},
			wantErr: "duplicate",
		},
		{
			name: "valid input",
			input: BatchInput{Forums: []BatchForum{
				{Topic: "free will", Personas: []string{"socrates", "kant"}},
				{Name: "ethics night", Mode: "debate", Personas: []string{"nietzsche"}},
			}},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Errorf("expected error containing %q, got nil", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestBatchInput_JSON(t *testing.T) {
	jsonInput := `{
		"forums": [
			{"topic": "free will", "personas": ["socrates", "kant"]},
			{"name": "ethics night", "mode": "debate", "personas": ["nietzsche"], "seed": "Is morality invented?"}
		]
	}`

	var input BatchInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(input.Forums) != 2 {
		t.Errorf("expected 2 forums, got %d", len(input.Forums))
	}

	if input.Forums[0].Topic != "free will" {
		t.Errorf("expected topic 'free will', got %q", input.Forums[0].Topic)
	}

	if input.Forums[1].Seed != "Is morality invented?" {
		t.Errorf("expected seed message, got %q", input.Forums[1].Seed)
	}

	if err := input.Validate(); err != nil {
		t.Errorf("expected valid input, got %v", err)
	}
}

func TestCountByStatus(t *testing.T) {
	results := []BatchResult{
		{Status: StatusCreated},
		{Status: StatusCreated},
		{Status: StatusFailed},
		{Status: StatusSkipped},
		{Status: StatusSkipped},
		{Status: StatusSkipped},
	}

	if got := countByStatus(results, StatusCreated); got != 2 {
		t.Errorf("countByStatus(created) = %d, want 2", got)
	}
	if got := countByStatus(results, StatusFailed); got != 1 {
		t.Errorf("countByStatus(failed) = %d, want 1", got)
	}
	if got := countByStatus(results, StatusSkipped); got != 3 {
		t.Errorf("countByStatus(skipped) = %d, want 3", got)
	}
}
