package waitlist

import (
	"strings"
)

type CreateEntryRequest struct {
	FirstName        string `json:"firstName" binding:"required,min=1,max=255"`
	LastName         string `json:"lastName" binding:"required,min=1,max=255"`
	Email            string `json:"email" binding:"required,email,max=255"`
	Phone            string `json:"phone" binding:"required,min=1,max=32"`
	Company          string `json:"company" binding:"max=255"`
	Role             string `json:"role" binding:"max=255"`
	InterestType     string `json:"interestType" binding:"required,oneof=borrower lender both exploring"`
	InvestmentAmount string `json:"investmentAmount" binding:"max=64"`
	LoanAmount       string `json:"loanAmount" binding:"max=64"`
	AdditionalInfo   string `json:"additionalInfo" binding:"max=2000"`
	// required on a bool means it must be true.
	AgreeToTerms     bool `json:"agreeToTerms" binding:"required"`
	MarketingConsent bool `json:"marketingConsent"`
}

// UpdateEntryRequest carries only the fields to overwrite. Absent fields keep
// their stored value.
type UpdateEntryRequest struct {
	FirstName        *string `json:"firstName" binding:"omitempty,min=1,max=255"`
	LastName         *string `json:"lastName" binding:"omitempty,min=1,max=255"`
	Email            *string `json:"email" binding:"omitempty,email,max=255"`
	Phone            *string `json:"phone" binding:"omitempty,min=1,max=32"`
	Company          *string `json:"company" binding:"omitempty,max=255"`
	Role             *string `json:"role" binding:"omitempty,max=255"`
	InterestType     *string `json:"interestType" binding:"omitempty,oneof=borrower lender both exploring"`
	InvestmentAmount *string `json:"investmentAmount" binding:"omitempty,max=64"`
	LoanAmount       *string `json:"loanAmount" binding:"omitempty,max=64"`
	AdditionalInfo   *string `json:"additionalInfo" binding:"omitempty,max=2000"`
	MarketingConsent *bool   `json:"marketingConsent"`
	Status           *string `json:"status" binding:"omitempty,oneof=pending contacted onboarded"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending contacted onboarded"`
}

// ListEntriesQuery mirrors the dashboard filters.
type ListEntriesQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=all pending contacted onboarded"`
	Interest string `form:"interest" binding:"omitempty,oneof=all borrower lender both exploring"`
	Search   string `form:"search" binding:"max=255"`
}

type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,max=8"`
}

type EntryResponse struct {
	// Snowflake ids exceed 2^53, so they travel as strings.
	ID               int64   `json:"id,string"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	Company          string  `json:"company"`
	Role             string  `json:"role"`
	InterestType     string  `json:"interestType"`
	InvestmentAmount string  `json:"investmentAmount"`
	LoanAmount       string  `json:"loanAmount"`
	AdditionalInfo   string  `json:"additionalInfo"`
	AgreeToTerms     bool    `json:"agreeToTerms"`
	MarketingConsent bool    `json:"marketingConsent"`
	Status           string  `json:"status"`
	SubmittedAt      string  `json:"submittedAt"`
	UpdatedAt        *string `json:"updatedAt,omitempty"`
}

type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
	Count   int             `json:"count"`
}

// ExportResult is a rendered snapshot ready to be sent as a download.
type ExportResult struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ========================================
// Mappers
// ========================================

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ToInput(req *CreateEntryRequest) Input {
	if req == nil {
		return Input{}
	}
	return Input{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            normalizeEmail(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Company:          strings.TrimSpace(req.Company),
		Role:             strings.TrimSpace(req.Role),
		InterestType:     InterestType(req.InterestType),
		InvestmentAmount: req.InvestmentAmount,
		LoanAmount:       req.LoanAmount,
		AdditionalInfo:   req.AdditionalInfo,
		AgreeToTerms:     req.AgreeToTerms,
		MarketingConsent: req.MarketingConsent,
	}
}

func ToPatch(req *UpdateEntryRequest) Patch {
	if req == nil {
		return Patch{}
	}

	trimmed := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		return &s
	}

	p := Patch{
		FirstName:        trimmed(req.FirstName),
		LastName:         trimmed(req.LastName),
		Phone:            trimmed(req.Phone),
		Company:          trimmed(req.Company),
		Role:             trimmed(req.Role),
		InvestmentAmount: req.InvestmentAmount,
		LoanAmount:       req.LoanAmount,
		AdditionalInfo:   req.AdditionalInfo,
		MarketingConsent: req.MarketingConsent,
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		p.Email = &email
	}
	if req.InterestType != nil {
		interest := InterestType(*req.InterestType)
		p.InterestType = &interest
	}
	if req.Status != nil {
		status := Status(*req.Status)
		p.Status = &status
	}
	return p
}

// ToQuery drops the "all" choices, which mean no filter.
func ToQuery(q ListEntriesQuery) Query {
	var out Query
	if q.Status != "" && q.Status != StatusFilterAll {
		out.Status = Status(q.Status)
	}
	if q.Interest != "" && q.Interest != StatusFilterAll {
		out.Interest = InterestType(q.Interest)
	}
	out.Search = strings.TrimSpace(q.Search)
	return out
}

func ToEntryResponse(r Record) EntryResponse {
	resp := EntryResponse{
		ID:               r.ID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Company:          r.Company,
		Role:             r.Role,
		InterestType:     string(r.InterestType),
		InvestmentAmount: r.InvestmentAmount,
		LoanAmount:       r.LoanAmount,
		AdditionalInfo:   r.AdditionalInfo,
		AgreeToTerms:     r.AgreeToTerms,
		MarketingConsent: r.MarketingConsent,
		Status:           string(r.Status),
		SubmittedAt:      formatTimestamp(r.SubmittedAt),
	}
	if r.UpdatedAt != nil {
		updatedAt := formatTimestamp(*r.UpdatedAt)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

func ToEntryResponses(records []Record) []EntryResponse {
	out := make([]EntryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToEntryResponse(r))
	}
	return out
}
