package validate

import (
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "ship-of-theseus", false},
		{"valid with spaces", "ship of theseus", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Name("name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Name(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestUnitInterval(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"one", 1, false},
		{"middle", 0.5, false},
		{"negative", -0.1, true},
		{"above one", 1.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UnitInterval("trait", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("UnitInterval(%g) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "socrates", false},
		{"with digits", "agent2", false},
		{"with separators", "de_beauvoir-2", false},
		{"uppercase", "Socrates", true},
		{"spaces", "the stagirite", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Identifier("id", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Identifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
