package seed

import (
	"time"

	"github.com/MikeSquared-Agency/elyx/internal/models"
)

func timeline(memberID int64) []models.TimelineEvent {
	return []models.TimelineEvent{
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.January, 15),
			Title:            "Initial Health Inquiry & Onboarding",
			Category:         "onboarding",
			Status:           "completed",
			Description:      "Member expresses concern about high intensity minutes on Garmin",
			Outcome:          "Information provided & plan proposed",
			TeamMembers:      []string{"Ruby", "Dr. Warren"},
			ResponseTime:     "25 minutes",
			TimeToResolution: "3 days",
			FrictionPoints:   "None",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.February, 3),
			Title:            "Critical Board Presentation Preparation",
			Category:         "lifestyle",
			Status:           "completed",
			Description:      "Member needs to be sharp for board meeting, concerned about dizziness",
			Outcome:          "Travel protocol and jet lag mitigation implemented",
			TeamMembers:      []string{"Advik", "Ruby"},
			ResponseTime:     "10 minutes",
			TimeToResolution: "ongoing",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.March, 1),
			Title:            "Member Dissatisfaction & Service Feedback",
			Category:         "feedback",
			Status:           "resolved",
			Description:      "Member frustrated with perceived lack of progress and proactivity",
			Outcome:          "Service improvements and better communication protocols",
			TeamMembers:      []string{"Neel", "Ruby"},
			ResponseTime:     "1 day 13 hours",
			TimeToResolution: "1 day 1 hour",
			FrictionPoints:   "Perceived inaction, lack of proactivity, communication confusion",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.April, 12),
			Title:            "First Successful Zone 2 Protocol",
			Category:         "exercise",
			Status:           "breakthrough",
			Description:      "Successfully completed 25-minute cardio with stable HRV using hydration protocol",
			Outcome:          "Found controllable variable for autonomic health",
			TeamMembers:      []string{"Advik"},
			ResponseTime:     "immediate",
			TimeToResolution: "same day",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.May, 2),
			Title:            "Major Illness Setback",
			Category:         "medical",
			Status:           "resolved",
			Description:      "Viral infection requiring comprehensive sick day protocol",
			Outcome:          "Successful recovery with board meeting rescheduled",
			TeamMembers:      []string{"Dr. Warren", "Advik", "Ruby", "Neel"},
			ResponseTime:     "5 minutes",
			TimeToResolution: "3 weeks",
			FrictionPoints:   "Board meeting timing conflict",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.June, 22),
			Title:            "Multi-Pillar Sleep Success",
			Category:         "breakthrough",
			Status:           "completed",
			Description:      "Record deep sleep using blue-light glasses and shutdown ritual",
			Outcome:          "1h 30m deep sleep - personal record",
			TeamMembers:      []string{"Advik", "Dr. Evans"},
			ResponseTime:     "proactive",
			TimeToResolution: "immediate",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.July, 16),
			Title:            "Personalized Nutrition Discovery",
			Category:         "nutrition",
			Status:           "breakthrough",
			Description:      "CGM data reveals optimal sushi consumption strategy",
			Outcome:          "Glucose spike reduced from 180 to 140 with protocol",
			TeamMembers:      []string{"Carla"},
			ResponseTime:     "20 minutes",
			TimeToResolution: "1 day",
		},
		{
			MemberID:         memberID,
			Date:             models.NewDate(2025, time.August, 12),
			Title:            "Long-term Goals Definition",
			Category:         "planning",
			Status:           "active",
			Description:      "Centenarian Decathlon goals set with measurable targets",
			Outcome:          "Clear 12-24 month targets established",
			TeamMembers:      []string{"Rachel", "Ruby"},
			ResponseTime:     "immediate",
			TimeToResolution: "same day",
		},
	}
}

// Monthly readings for January through August, first of each month.
var metricSeries = map[string][8]float64{
	"hrv":                {35, 38, 42, 39, 25, 44, 47, 48},
	"recovery_score":     {45, 52, 33, 58, 1, 72, 78, 82},
	"resting_heart_rate": {68, 66, 64, 63, 72, 62, 61, 60},
}

func healthMetrics(memberID int64) []models.HealthMetric {
	var out []models.HealthMetric
	for _, typ := range []string{"hrv", "recovery_score", "resting_heart_rate"} {
		for i, v := range metricSeries[typ] {
			out = append(out, models.HealthMetric{
				MemberID:   memberID,
				MetricType: typ,
				Value:      v,
				Date:       models.NewDate(2025, time.Month(i+1), 1),
			})
		}
	}
	return out
}

func decisions(memberID int64) []models.Decision {
	return []models.Decision{
		{
			MemberID:    memberID,
			Date:        models.NewDate(2025, time.February, 28),
			Type:        "device",
			Decision:    "Upgrade to Whoop 4.0 strap",
			Reason:      "Need high-fidelity autonomic data for POTS management",
			TriggeredBy: "Dr. Warren analysis of medical records",
			Outcome:     "Successful data collection enabling Zone 2 protocol optimization",
			Evidence:    "Garmin provides blurry photo, need HD video of autonomic function",
		},
		{
			MemberID:    memberID,
			Date:        models.NewDate(2025, time.March, 4),
			Type:        "supplement",
			Decision:    "Switch to Magnesium Threonate",
			Reason:      "Improve sleep quality and cognitive performance",
			TriggeredBy: "Carla's analysis of energy patterns and Grok supplement review",
			Outcome:     "First full night sleep in months, sleep latency improved from 25 to 8 minutes",
			Evidence:    "Crosses blood-brain barrier more effectively than other forms",
		},
		{
			MemberID:    memberID,
			Date:        models.NewDate(2025, time.May, 2),
			Type:        "protocol",
			Decision:    "Implement Sick Day Protocol",
			Reason:      "Whoop data showed viral infection, prevent cognitive impairment",
			TriggeredBy: "12bpm RHR increase, 45% HRV decrease, elevated respiratory rate",
			Outcome:     "Successful recovery, board meeting rescheduled appropriately",
			Evidence:    "Biotelemetry data confirmed significant immune response",
		},
		{
			MemberID:    memberID,
			Date:        models.NewDate(2025, time.June, 20),
			Type:        "diagnostic",
			Decision:    "Implement Continuous Glucose Monitor",
			Reason:      "Real-time glucose data for personalized nutrition optimization",
			TriggeredBy: "Dr. Warren recommendation for metabolic health investigation",
			Outcome:     "Discovered oatmeal causes 160 spike, personalized breakfast strategy",
			Evidence:    "Need data on how body responds to specific foods",
		},
	}
}
