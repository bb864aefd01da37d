package models

type ViolationType string

const (
	ViolationSpam           ViolationType = "spam"
	ViolationHarassment     ViolationType = "harassment"
	ViolationHateSpeech     ViolationType = "hate_speech"
	ViolationMisinformation ViolationType = "misinformation"
	ViolationExplicit       ViolationType = "explicit"
	ViolationViolence       ViolationType = "violence"
	ViolationPersonalInfo   ViolationType = "personal_info"
	ViolationCopyright      ViolationType = "copyright"
	ViolationScam           ViolationType = "scam"
	ViolationImpersonation  ViolationType = "impersonation"
	ViolationOffTopic       ViolationType = "off_topic"
	ViolationLowQuality     ViolationType = "low_quality"
	ViolationDuplicate      ViolationType = "duplicate"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal of a severity (low=1 .. critical=4).
// Unknown severities rank 0, below low.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// ViolationDetail is a single detected policy breach. Details are produced
// fresh on every evaluation and attached to the resulting ModerationResult.
type ViolationDetail struct {
	Type       ViolationType `json:"type"`
	Severity   Severity      `json:"severity"`
	Confidence float64       `json:"confidence"`
	Evidence   string        `json:"evidence,omitempty"`
}

// MaxSeverityRank returns the highest severity rank in the set, 0 if empty.
func MaxSeverityRank(violations []ViolationDetail) int {
	max := 0
	for _, v := range violations {
		if r := v.Severity.Rank(); r > max {
			max = r
		}
	}
	return max
}

// AvgConfidence returns the mean confidence across the set, 0 if empty.
func AvgConfidence(violations []ViolationDetail) float64 {
	if len(violations) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range violations {
		sum += v.Confidence
	}
	return sum / float64(len(violations))
}
