package utils

import "testing"

func TestNextSequentialID(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{name: "Empty", existing: nil, expected: "fleet-1"},
		{name: "Contiguous", existing: []string{"fleet-1", "fleet-2"}, expected: "fleet-3"},
		{name: "Gap after delete", existing: []string{"fleet-1", "fleet-4"}, expected: "fleet-5"},
		{name: "Foreign keys ignored", existing: []string{"venator-9", "fleet-x", "fleet-2"}, expected: "fleet-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextSequentialID("fleet", tt.existing); got != tt.expected {
				t.Errorf("NextSequentialID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"Coruscant", true},
		{"Capital Ships", true},
		{"", false},
		{"   ", false},
		{"a/b", false},
		{"a.b", false},
		{"a$b", false},
	}

	for _, tt := range tests {
		if got := ValidKey(tt.input); got != tt.valid {
			t.Errorf("ValidKey(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}
