package review

// RiskLevel grades how much scrutiny a recommendation session needs before
// its results may be published.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// HealthProfile is the subset of questionnaire data relevant to risk grading.
type HealthProfile struct {
	Allergies          []string `json:"allergies"`
	ChronicConditions  []string `json:"chronicConditions"`
	Medications        []string `json:"medications"`
	Goals              []string `json:"goals"`
	DietaryPreferences []string `json:"dietaryPreferences"`
}

var highRiskConditions = map[string]bool{
	"diabetes":       true,
	"heart_disease":  true,
	"kidney_disease": true,
	"liver_disease":  true,
	"cancer":         true,
	"autoimmune":     true,
}

var highRiskMedications = map[string]bool{
	"warfarin":          true,
	"insulin":           true,
	"metformin":         true,
	"lithium":           true,
	"immunosuppressant": true,
}

var criticalAllergies = map[string]bool{
	"severe_food_allergy": true,
	"anaphylaxis_history": true,
}

// AssessRisk grades a profile. Critical allergies are always CRITICAL; two or
// more high-risk condition/medication hits escalate HIGH to CRITICAL; any
// medication at all lifts an otherwise clean profile to MEDIUM.
func AssessRisk(profile HealthProfile) RiskLevel {
	for _, allergy := range profile.Allergies {
		if criticalAllergies[allergy] {
			return RiskCritical
		}
	}

	hits := 0
	for _, condition := range profile.ChronicConditions {
		if highRiskConditions[condition] {
			hits++
		}
	}
	for _, medication := range profile.Medications {
		if highRiskMedications[medication] {
			hits++
		}
	}
	switch {
	case hits >= 2:
		return RiskCritical
	case hits == 1:
		return RiskHigh
	case len(profile.Medications) > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RequiresReview reports whether a session at this risk level must pass the
// moderation queue before recommendations are published.
func RequiresReview(level RiskLevel) bool {
	return level == RiskHigh || level == RiskCritical
}
