package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformKommo    Platform = "kommo"
	PlatformForm     Platform = "form"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNoLead means the payload was valid but carried nothing to capture,
	// e.g. a WhatsApp delivery receipt.
	ErrNoLead = errors.New("payload contains no lead")
)

// Parse turns a platform webhook body into inbound leads.
func Parse(platform Platform, body []byte) ([]InboundLead, error) {
	switch platform {
	case PlatformWhatsApp:
		return parseWhatsApp(body)
	case PlatformKommo:
		return parseKommo(body)
	case PlatformForm:
		return parseForm(body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
}

func parseWhatsApp(body []byte) ([]InboundLead, error) {
	var n whatsAppNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("decode whatsapp payload: %w", err)
	}

	var leads []InboundLead
	seen := make(map[string]bool)
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			if change.Field != "" && change.Field != "messages" {
				continue
			}
			names := make(map[string]string)
			for _, c := range change.Value.Contacts {
				names[c.WaID] = c.Profile.Name
			}
			for _, msg := range change.Value.Messages {
				if msg.From == "" || seen[msg.From] {
					continue
				}
				seen[msg.From] = true

				name := strings.TrimSpace(names[msg.From])
				if name == "" {
					name = "WhatsApp " + msg.From
				}
				leads = append(leads, InboundLead{
					Name:   name,
					Phone:  "+" + strings.TrimPrefix(msg.From, "+"),
					Source: string(PlatformWhatsApp),
					Notes:  strings.TrimSpace(msg.Text.Body),
				})
			}
		}
	}

	if len(leads) == 0 {
		return nil, ErrNoLead
	}
	return leads, nil
}

// parseKommo reads the form-encoded lead hook, e.g.
// leads[add][0][name]=...&contacts[add][0][custom_fields][0][code]=PHONE.
func parseKommo(body []byte) ([]InboundLead, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("decode kommo payload: %w", err)
	}

	var leads []InboundLead
	for _, event := range []string{"add", "status"} {
		for i := 0; ; i++ {
			prefix := fmt.Sprintf("leads[%s][%d]", event, i)
			if _, ok := values[prefix+"[id]"]; !ok {
				break
			}

			lead := InboundLead{
				Name:   strings.TrimSpace(values.Get(prefix + "[name]")),
				Source: string(PlatformKommo),
			}
			if price, err := strconv.ParseFloat(values.Get(prefix+"[price]"), 64); err == nil && price > 0 {
				lead.ExpectedValue = &price
			}
			// contacts[add] is indexed alongside leads[add] only
			if event == "add" {
				applyKommoContact(values, i, &lead)
			}

			if lead.Name == "" {
				lead.Name = "Kommo lead " + values.Get(prefix+"[id]")
			}
			leads = append(leads, lead)
		}
	}

	if len(leads) == 0 {
		return nil, ErrNoLead
	}
	return leads, nil
}

func applyKommoContact(values url.Values, i int, lead *InboundLead) {
	prefix := fmt.Sprintf("contacts[add][%d]", i)
	if name := strings.TrimSpace(values.Get(prefix + "[name]")); name != "" && lead.Name == "" {
		lead.Name = name
	}
	lead.CompanyName = strings.TrimSpace(values.Get(prefix + "[company_name]"))

	for f := 0; ; f++ {
		field := fmt.Sprintf("%s[custom_fields][%d]", prefix, f)
		code, ok := values[field+"[code]"]
		if !ok {
			return
		}
		value := strings.TrimSpace(values.Get(field + "[values][0][value]"))
		switch strings.ToUpper(code[0]) {
		case "PHONE":
			lead.Phone = value
		case "EMAIL":
			lead.Email = value
		case "POSITION":
			lead.JobTitle = value
		}
	}
}

func parseForm(body []byte) ([]InboundLead, error) {
	var f formSubmission
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("decode form payload: %w", err)
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = strings.TrimSpace(f.FirstName + " " + f.LastName)
	}
	if name == "" && f.Email == "" && f.Phone == "" {
		return nil, ErrNoLead
	}
	if name == "" {
		name = strings.TrimSpace(f.Email)
	}

	company := f.CompanyName
	if company == "" {
		company = f.Company
	}

	source := strings.TrimSpace(f.Source)
	if f.LeadMagnetID != "" {
		source = f.LeadMagnetID
	}
	if source == "" {
		source = "website"
	}

	return []InboundLead{{
		Name:          name,
		Email:         strings.TrimSpace(f.Email),
		Phone:         strings.TrimSpace(f.Phone),
		CompanyName:   strings.TrimSpace(company),
		JobTitle:      strings.TrimSpace(f.JobTitle),
		Source:        source,
		Notes:         strings.TrimSpace(f.Message),
		ExpectedValue: f.ExpectedValue,
	}}, nil
}
