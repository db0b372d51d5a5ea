package entity

import "strings"

const MaxLeadScore = 100

// LeadAttributes are the lead fields that feed ScoreLead. Only presence of the
// contact fields matters, not their content.
type LeadAttributes struct {
	Source      LeadSource
	JobTitle    string
	Priority    Priority
	CompanyName string
	Email       string
	Phone       string
}

var sourcePoints = map[LeadSource]int{
	SourceReferral:       25,
	SourceLinkedIn:       20,
	SourceWebsite:        15,
	SourceGoogleAds:      10,
	SourceFacebookAds:    8,
	SourceEmailMarketing: 5,
	SourceColdOutreach:   3,
}

const defaultSourcePoints = 5

var priorityPoints = map[Priority]int{
	PriorityUrgent: 20,
	PriorityHigh:   15,
	PriorityMedium: 10,
	PriorityLow:    5,
}

const defaultPriorityPoints = 10

const contactFieldPoints = 10

// Seniority rules are checked in order; the first match wins.
var seniorityRules = []struct {
	keywords []string
	points   int
}{
	{[]string{"ceo", "founder", "owner", "president"}, 25},
	{[]string{"director", "manager", "head of"}, 15},
	{[]string{"senior", "lead"}, 10},
	{[]string{"coordinator", "assistant"}, 5},
}

const otherTitlePoints = 8

// ScoreLead computes the 0-100 quality score for a lead. It is total: unknown
// sources and priorities fall back to their default contribution.
func ScoreLead(a LeadAttributes) int {
	score := SourcePoints(a.Source)

	for _, field := range []string{a.CompanyName, a.Email, a.Phone} {
		if strings.TrimSpace(field) != "" {
			score += contactFieldPoints
		}
	}

	score += JobTitlePoints(a.JobTitle)
	score += PriorityPoints(a.Priority)

	if score > MaxLeadScore {
		return MaxLeadScore
	}
	return score
}

func SourcePoints(s LeadSource) int {
	if p, ok := sourcePoints[s.normalized()]; ok {
		return p
	}
	return defaultSourcePoints
}

func PriorityPoints(p Priority) int {
	if v, ok := priorityPoints[p.normalized()]; ok {
		return v
	}
	return defaultPriorityPoints
}

func JobTitlePoints(title string) int {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return 0
	}
	for _, rule := range seniorityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.points
			}
		}
	}
	return otherTitlePoints
}
