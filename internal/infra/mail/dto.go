package mail

type DealCreatedEmailData struct {
	DealTitle   string
	DealValue   string
	Channel     string
	Priority    string
	LeadName    string
	LeadEmail   string
	LeadPhone   string
	CompanyName string
	LeadScore   int
	CloseDate   string
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// SalesTo receives every deal-created notification.
	SalesTo string
}
