package usecase

import (
	"strings"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

const (
	channelUnknown    = "Unknown"
	channelLeadMagnet = "Lead Magnet"
)

var leadMagnetPrefixes = []string{"lead_magnet", "lead-magnet", "lm_", "magnet:"}

var channelNames = map[string]string{
	"website":         "Website",
	"organic search":  "Organic Search",
	"organic_search":  "Organic Search",
	"seo":             "Organic Search",
	"social media":    "Social Media",
	"social_media":    "Social Media",
	"social":          "Social Media",
	"email marketing": "Email Marketing",
	"email_marketing": "Email Marketing",
	"email":           "Email Marketing",
	"cold call":       "Cold Call",
	"cold_call":       "Cold Call",
	"cold_outreach":   "Cold Call",
	"referral":        "Referral",
	"linkedin":        "LinkedIn",
	"advertising":     "Advertising",
	"ads":             "Advertising",
	"google_ads":      "Advertising",
	"facebook_ads":    "Advertising",
	"partner":         "Partner",
}

// ChannelForSource maps a raw lead source to the deal channel display name.
// Unrecognized sources pass through unchanged.
func ChannelForSource(source entity.LeadSource) string {
	raw := strings.TrimSpace(string(source))
	if raw == "" {
		return channelUnknown
	}

	key := strings.ToLower(raw)
	for _, prefix := range leadMagnetPrefixes {
		if strings.HasPrefix(key, prefix) {
			return channelLeadMagnet
		}
	}
	if name, ok := channelNames[key]; ok {
		return name
	}
	return raw
}

// DealPriorityFor maps a lead priority onto the deal priority scale.
func DealPriorityFor(p entity.Priority) entity.DealPriority {
	switch entity.Priority(strings.ToLower(strings.TrimSpace(string(p)))) {
	case entity.PriorityUrgent, entity.PriorityHigh:
		return entity.DealPriorityHigh
	case entity.PriorityLow:
		return entity.DealPriorityLow
	default:
		return entity.DealPriorityMedium
	}
}
