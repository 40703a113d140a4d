package scenario

const systemPrompt = `You are an expert healthcare conversation generator for Elyx Healthcare.

Generate realistic WhatsApp-style conversations between Rohan Patel (46-year-old FinTech executive based in Singapore) and healthcare team members.

CRITICAL FORMATTING - Use EXACT format:
[DD/MM/YY, HH:MM AM/PM] Sender: Message text here
[15/01/25, 2:15 PM] Rohan Patel: My Garmin is logging consistently high intensity minutes...
[15/01/25, 2:38 PM] Ruby: Hi Rohan, thank you for sharing this...

MEMBER PROFILE:
- Rohan Patel: 46-year-old Regional Head of Sales for FinTech
- Location: Singapore, travels frequently (UK, US, South Korea, Jakarta)
- Health Issues: POTS/long COVID, family history of heart disease
- Goals: Reduce heart disease risk, enhance cognitive function, annual health screenings
- Analytical, driven, time-constrained, values data-driven approaches
- Uses Garmin watch, Whoop strap, PA named Sarah Tan
- Home cook named Javier, supportive wife, 2 young children

TEAM COMMUNICATION STYLES:
- Ruby (Concierge): Warm, organized, proactive coordination
- Dr. Warren (Medical): Authoritative, precise medical analysis
- Advik (Performance): Data-focused, analytical, wearable insights
- Carla (Nutrition): Practical, educational, behavior-focused
- Rachel (PT): Direct, encouraging, movement expertise
- Neel (Lead): Strategic, big-picture leadership
- Dr. Evans (Stress): Calming, methodical, mindfulness-focused

Generate authentic healthcare conversations with specific data, medical reasoning, and realistic member interactions.`

const onboardingPrompt = `

Generate %d-%d realistic conversation messages for Rohan's FIRST WEEK onboarding (January 15-22, 2025).

SCENARIO: Initial health inquiry and team introduction
- Rohan reports Garmin showing high intensity minutes despite POTS diagnosis
- Shares supplement list, discusses family history of heart disease
- Team introduces themselves and explains their roles
- Discusses collecting medical records from Singapore and NY cardiologists
- Coordination with PA Sarah Tan for scheduling
- Ruby handles logistics, Dr. Warren provides medical oversight

FORMAT EACH MESSAGE EXACTLY AS:
[15/01/25, 2:15 PM] Rohan Patel: Ruby, my Garmin is logging consistently high intensity minutes, even on rest days. I suspect it's my POTS/long COVID. My current health management is ad-hoc. I need a proper medical review.

REQUIREMENTS:
- Mix of medical assessment, scheduling, and relationship building
- Show Rohan's analytical personality and time constraints
- Include specific health data references (HRV, recovery scores)
- Demonstrate team expertise in their respective domains
- Realistic timestamps throughout the week (business hours Singapore time)
- Reference his travel schedule, young children, supportive wife`

const progressPrompt = `

Generate %d-%d conversation messages for Month %d (2025).

SCENARIO: %s

Include realistic:
- Wearable data discussions (specific HRV, recovery numbers)
- Protocol adjustments based on member feedback
- Travel coordination and outcomes
- Health metric improvements/setbacks
- Decision-making with clear rationales
- Team coordination for member needs

Show progression in relationship and member's growing engagement with the process.`

const setbackPrompt = `

Generate %d-%d messages for ILLNESS SETBACK period (May 2-7, 2025).

SCENARIO: Viral infection detection and management
- Whoop data shows 12bpm RHR increase, 45%% HRV drop
- Board meeting scheduled for next day (critical timing)
- Team implements sick day protocol
- Coordination for meeting rescheduling
- IV therapy arrangement, medical letter
- Recovery monitoring and gradual return

Show crisis management, team coordination, and data-driven medical decisions.
Include specific biomarker numbers and timestamps.`

const breakthroughPrompt = `

Generate %d-%d messages showing KEY BREAKTHROUGH moments:

1. First successful Zone 2 cardio (25 minutes stable) - April 2025
2. Sleep improvement with magnesium (8 min vs 25 min latency) - March 2025
3. CGM sushi experiment (180→140 glucose) - July 2025
4. Blue-light glasses + shutdown ritual success - June 2025

Show member excitement, data validation, and team analysis of what worked.
Include specific numbers and member's analytical satisfaction with results.`

// Narrative focus for each progress month. Months not listed fall back to
// defaultProgressFocus.
var progressFocus = map[int]string{
	2: "Early progress monitoring, Zone 2 cardio experiments, travel protocols",
	3: "Member feedback period, workout plan improvements, magnesium breakthrough",
	4: "Whoop data analysis, Zone 2 optimization, stress management introduction",
	6: "Post-illness recovery, CGM implementation, nutrition personalization",
	7: "Advanced protocols, travel optimization, glucose experiments",
	8: "Long-term goal setting, piano discussion, performance optimization",
}

const defaultProgressFocus = "General progress and protocol adjustments"
