package transcript

import "testing"

func TestCanonical(t *testing.T) {
	dir := Elyx()
	tests := []struct {
		raw, want string
	}{
		{"Ruby (Concierge)", "Ruby"},
		{"ruby", "Ruby"},
		{"  RUBY  ", "Ruby"},
		{"Dr. Warren (Medical)", "Dr. Warren"},
		{"dr warren", "Dr. Warren"},
		{"DR.  WARREN", "Dr. Warren"},
		{"Rohan", "Rohan Patel"},
		{"member", "Rohan Patel"},
		{"Member", "Rohan Patel"},
		{"Rachel (PT)", "Rachel"},
		{"Nova", "Nova"},
		{"  Nova Lee ", "Nova Lee"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := dir.Canonical(tt.raw); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonical_Idempotent(t *testing.T) {
	dir := Elyx()
	names := []string{"Rohan Patel", "Ruby", "Dr. Warren", "Advik", "Carla", "Rachel", "Neel", "Dr. Evans", "Nova"}
	for _, name := range names {
		once := dir.Canonical(name)
		if once != name {
			t.Errorf("Canonical(%q) = %q, want unchanged", name, once)
		}
		if twice := dir.Canonical(once); twice != once {
			t.Errorf("Canonical not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}

func TestRole(t *testing.T) {
	dir := Elyx()
	tests := map[string]string{
		"Rohan Patel": "Member",
		"Ruby":        "Concierge",
		"Dr. Warren":  "Medical Strategist",
		"Advik":       "Performance Scientist",
		"Carla":       "Nutritionist",
		"Rachel":      "PT/Physiotherapist",
		"Neel":        "Concierge Lead",
		"Dr. Evans":   "Stress Management",
		"Nova":        DefaultRole,
	}
	for name, want := range tests {
		if got := dir.Role(name); got != want {
			t.Errorf("Role(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dr. Warren (Medical)", "dr warren"},
		{"dr warren", "dr warren"},
		{"DR.  WARREN", "dr warren"},
		{"  Ruby ", "ruby"},
		{"O'Neil-Smith", "oneilsmith"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NameKey(tt.in); got != tt.want {
			t.Errorf("NameKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripParenthetical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ruby (Concierge)", "Ruby"},
		{"Ruby", "Ruby"},
		{"Ruby (unterminated", "Ruby (unterminated"},
		{" Advik (Performance) ", "Advik"},
	}
	for _, tt := range tests {
		if got := StripParenthetical(tt.in); got != tt.want {
			t.Errorf("StripParenthetical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewDirectory_CustomRoster(t *testing.T) {
	dir := NewDirectory(
		Person{Name: "Ana Silva", Role: "Member", Aliases: []string{"Ana"}},
		[]Person{{Name: "Kai", Role: "Coach"}},
	)
	if got := dir.Canonical("ana"); got != "Ana Silva" {
		t.Errorf("expected alias to resolve, got %q", got)
	}
	if got := dir.Canonical("Member"); got != "Ana Silva" {
		t.Errorf("expected generic member label to resolve, got %q", got)
	}
	if !dir.IsMember("Ana Silva") || dir.IsMember("Kai") {
		t.Error("IsMember mismatch")
	}
	if got := dir.Role("Kai"); got != "Coach" {
		t.Errorf("expected Coach, got %q", got)
	}
}
