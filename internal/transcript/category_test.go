package transcript

import "testing"

func TestCategorize(t *testing.T) {
	dir := Elyx()
	tests := []struct {
		name    string
		message string
		sender  string
		want    Category
	}{
		{"emergency wins over data", "This is urgent, my sleep tanked", "Rohan Patel", CategoryEmergency},
		{"critical", "Critical: chest pain", "Rohan Patel", CategoryEmergency},
		{"hrv", "Your HRV is trending up", "Advik", CategoryDataAnalysis},
		{"garmin", "My Garmin is logging high intensity minutes", "Rohan Patel", CategoryDataAnalysis},
		{"data beats exercise", "Recovery after the workout looks fine", "Advik", CategoryDataAnalysis},
		{"zone 2", "Aim for Zone 2 three times a week", "Rachel", CategoryExercise},
		{"cgm", "Your CGM trace after lunch looks flat", "Carla", CategoryNutrition},
		{"supplement", "Which supplement should I take?", "Rohan Patel", CategoryNutrition},
		{"flight", "Flight to London next Tuesday", "Rohan Patel", CategoryTravel},
		{"calendar", "I've put it in your calendar", "Ruby", CategoryScheduling},
		{"member fallback", "Thanks, will do", "Rohan Patel", CategoryMemberInquiry},
		{"team fallback", "Thanks, will do", "Ruby", CategoryTeamResponse},
		{"unknown sender fallback", "Hello there", "Nova", CategoryTeamResponse},
		{"case insensitive", "EMERGENCY", "Ruby", CategoryEmergency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dir.Categorize(tt.message, tt.sender); got != tt.want {
				t.Errorf("Categorize(%q, %q) = %s, want %s", tt.message, tt.sender, got, tt.want)
			}
		})
	}
}

func TestCategorize_AlwaysValid(t *testing.T) {
	dir := Elyx()
	for _, msg := range []string{"", "x", "urgent", "sleep", "protocol", "calendar", "hi"} {
		for _, sender := range []string{"Rohan Patel", "Ruby", "Nova", ""} {
			if c := dir.Categorize(msg, sender); !c.Valid() {
				t.Errorf("Categorize(%q, %q) = %q, not in closed set", msg, sender, c)
			}
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Category("sports").Valid() {
		t.Error("unknown category reported valid")
	}
}
