package transcript

import "strings"

// Category is the topical label of a message. The set is closed.
type Category string

const (
	CategoryEmergency     Category = "emergency"
	CategoryDataAnalysis  Category = "data_analysis"
	CategoryExercise      Category = "exercise"
	CategoryNutrition     Category = "nutrition"
	CategoryTravel        Category = "travel"
	CategoryScheduling    Category = "scheduling"
	CategoryMemberInquiry Category = "member_inquiry"
	CategoryTeamResponse  Category = "team_response"
	CategoryGeneral       Category = "general"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryEmergency, CategoryDataAnalysis, CategoryExercise, CategoryNutrition,
	CategoryTravel, CategoryScheduling, CategoryMemberInquiry, CategoryTeamResponse,
	CategoryGeneral,
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type keywordRule struct {
	category Category
	keywords []string
}

// Evaluated in order; the first rule with any keyword hit wins.
var keywordRules = []keywordRule{
	{CategoryEmergency, []string{"emergency", "urgent", "critical", "immediately"}},
	// "garmin" keeps wearable readouts such as "My Garmin is logging high
	// intensity minutes" in data_analysis alongside whoop.
	{CategoryDataAnalysis, []string{"data", "hrv", "whoop", "garmin", "recovery", "sleep"}},
	{CategoryExercise, []string{"exercise", "zone 2", "workout", "cardio"}},
	{CategoryNutrition, []string{"nutrition", "food", "supplement", "cgm"}},
	{CategoryTravel, []string{"travel", "trip", "flight", "protocol"}},
	{CategoryScheduling, []string{"schedule", "appointment", "calendar"}},
}

// Categorize assigns a category from keyword containment in message. When no
// keyword matches, messages from the member are inquiries and everything else
// is a team response.
func (d *Directory) Categorize(message, sender string) Category {
	lower := strings.ToLower(message)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	if d.IsMember(sender) {
		return CategoryMemberInquiry
	}
	return CategoryTeamResponse
}
