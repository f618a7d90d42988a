package security

import "testing"

func TestValidateImageRef(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"1234567890", true},
		{" 42 ", true},
		{"rbxasset://textures/face.png", true},
		{"http://example.com/a.png", false},
		{"12ab", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := ValidateImageRef(tt.ref); got != tt.want {
				t.Errorf("ValidateImageRef(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "  Kamino has fallen  ", "Kamino has fallen"},
		{"script tag", "<script>alert(1)</script>Victory", "Victory"},
		{"bold tag", "<b>Naboo</b> secured", "Naboo secured"},
		{"apostrophe", "Yularen's Fleet", "Yularen's Fleet"},
		{"punctuation round trip", `Republic's fleet & "Resolute" hold Kamino`, `Republic's fleet & "Resolute" hold Kamino`},
		{"tag with entities", "<i>Rex & Cody</i>", "Rex & Cody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
