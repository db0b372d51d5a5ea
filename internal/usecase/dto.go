package usecase

import "github.com/piyapromdee/leaniverse-crm/internal/entity"

type CreateLeadInput struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Phone         string   `json:"phone" validate:"omitempty,max=40"`
	CompanyName   string   `json:"company_name" validate:"omitempty,max=200"`
	JobTitle      string   `json:"job_title" validate:"omitempty,max=200"`
	Source        string   `json:"source" validate:"omitempty,max=100"`
	Priority      string   `json:"priority" validate:"omitempty,max=20"`
	Status        string   `json:"status" validate:"omitempty,oneof=new contacted qualified lost"`
	ExpectedValue *float64 `json:"expected_value" validate:"omitempty,gte=0"`
	AssignedTo    string   `json:"assigned_to"`
	Notes         string   `json:"notes"`
}

type UpdateLeadInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Email         *string  `json:"email" validate:"omitempty,email"`
	Phone         *string  `json:"phone" validate:"omitempty,max=40"`
	CompanyName   *string  `json:"company_name" validate:"omitempty,max=200"`
	JobTitle      *string  `json:"job_title" validate:"omitempty,max=200"`
	Source        *string  `json:"source" validate:"omitempty,max=100"`
	Priority      *string  `json:"priority" validate:"omitempty,max=20"`
	Status        *string  `json:"status" validate:"omitempty,oneof=new contacted qualified lost"`
	ExpectedValue *float64 `json:"expected_value" validate:"omitempty,gte=0"`
	AssignedTo    *string  `json:"assigned_to"`
	Notes         *string  `json:"notes"`
}

type LeadOutput struct {
	Lead     *entity.Lead   `json:"lead"`
	Degraded []DegradedStep `json:"degraded,omitempty"`
}

type ConvertLeadInput struct {
	LeadID string `json:"lead_id" validate:"required"`
}

type ConvertLeadOutput struct {
	Success  bool           `json:"success"`
	Deal     *entity.Deal   `json:"deal"`
	LeadID   string         `json:"lead_id"`
	Message  string         `json:"message"`
	Degraded []DegradedStep `json:"degraded,omitempty"`
}

// Catalog reconciliation: Suggest.

type Recommendation string

const (
	RecommendAutoLink        Recommendation = "auto-link"
	RecommendReviewSuggested Recommendation = "review-suggested"
	RecommendCreateNew       Recommendation = "create-new"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type ProductSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCount  int    `json:"priceCount"`
}

type SuggestedMatch struct {
	ExternalProductID string     `json:"externalProductId"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Similarity        int        `json:"similarity"`
	Confidence        Confidence `json:"confidence"`
}

type ProductSuggestion struct {
	Product          ProductSummary   `json:"product"`
	SuggestedMatches []SuggestedMatch `json:"suggestedMatches"`
	Recommendation   Recommendation   `json:"recommendation"`
}

type SuggestStats struct {
	TotalUnlinkedProducts int `json:"totalUnlinkedProducts"`
	TotalStripeProducts   int `json:"totalStripeProducts"`
	HighConfidenceMatches int `json:"highConfidenceMatches"`
	SuggestedMatches      int `json:"suggestedMatches"`
	CreateNewRecommended  int `json:"createNewRecommended"`
}

type SuggestOutput struct {
	Suggestions []ProductSuggestion `json:"suggestions"`
	Stats       SuggestStats        `json:"stats"`
}

// Catalog reconciliation: Apply.

type MappingAction string

const (
	ActionLink   MappingAction = "link"
	ActionCreate MappingAction = "create"
	ActionSkip   MappingAction = "skip"
)

type Mapping struct {
	ProductID       string        `json:"productId" validate:"required"`
	Action          MappingAction `json:"action" validate:"required,oneof=link create skip"`
	StripeProductID string        `json:"stripeProductId" validate:"required_if=Action link"`
}

type ApplyMappingsInput struct {
	Mappings []Mapping `json:"mappings" validate:"required,min=1,dive"`
}

type MappingResult struct {
	ProductID       string        `json:"productId"`
	Success         bool          `json:"success"`
	Action          MappingAction `json:"action,omitempty"`
	StripeProductID string        `json:"stripeProductId,omitempty"`
	PricesLinked    *int          `json:"pricesLinked,omitempty"`
	TotalPrices     *int          `json:"totalPrices,omitempty"`
	PriceErrors     []string      `json:"priceErrors,omitempty"`
	Error           string        `json:"error,omitempty"`
	Message         string        `json:"message,omitempty"`
}

type ApplySummary struct {
	Total      int    `json:"total"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Message    string `json:"message"`
}

type ApplyMappingsOutput struct {
	Success bool            `json:"success"`
	Results []MappingResult `json:"results"`
	Summary ApplySummary    `json:"summary"`
}

// Products.

type PriceInput struct {
	UnitAmount    int64  `json:"unit_amount" validate:"gte=0"`
	Currency      string `json:"currency" validate:"required,len=3"`
	Type          string `json:"type" validate:"required,oneof=one_time recurring"`
	Interval      string `json:"interval" validate:"required_if=Type recurring,omitempty,oneof=day week month year"`
	IntervalCount int64  `json:"interval_count" validate:"gte=0"`
}

type CreateProductInput struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=2000"`
	Prices      []PriceInput `json:"prices" validate:"required,min=1,dive"`
}
