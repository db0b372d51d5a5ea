package messaging

// InboundLead is a lead captured from a messaging platform or web form,
// before it becomes a CRM lead.
type InboundLead struct {
	Name          string
	Email         string
	Phone         string
	CompanyName   string
	JobTitle      string
	Source        string
	Notes         string
	ExpectedValue *float64
}

// WhatsApp Cloud API webhook notification.
type whatsAppNotification struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Website or landing-page form submission.
type formSubmission struct {
	Name          string   `json:"name"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Company       string   `json:"company"`
	CompanyName   string   `json:"company_name"`
	JobTitle      string   `json:"job_title"`
	Source        string   `json:"source"`
	LeadMagnetID  string   `json:"lead_magnet_id"`
	Message       string   `json:"message"`
	ExpectedValue *float64 `json:"expected_value"`
}
