package waitlist

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusOnboarded Status = "onboarded"
)

// Statuses lists every status in lifecycle order. The store does not enforce
// the order; any status may be set at any time.
func Statuses() []Status {
	return []Status{StatusPending, StatusContacted, StatusOnboarded}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusContacted, StatusOnboarded:
		return true
	}
	return false
}

type InterestType string

const (
	InterestBorrower  InterestType = "borrower"
	InterestLender    InterestType = "lender"
	InterestBoth      InterestType = "both"
	InterestExploring InterestType = "exploring"
)

func InterestTypes() []InterestType {
	return []InterestType{InterestBorrower, InterestLender, InterestBoth, InterestExploring}
}

func (i InterestType) IsValid() bool {
	switch i {
	case InterestBorrower, InterestLender, InterestBoth, InterestExploring:
		return true
	}
	return false
}

// Amount buckets offered by the signup form. Stored values are free-form.
const (
	Amount10kTo50k    = "10k-50k"
	Amount50kTo1Lakh  = "50k-1lakh"
	Amount1To5Lakh    = "1-5lakh"
	Amount5To10Lakh   = "5-10lakh"
	Amount10To25Lakh  = "10-25lakh"
	Amount25To50Lakh  = "25-50lakh"
	AmountAbove50Lakh = "50lakh+"
)

// Record is one waitlist signup. Its JSON layout is the persisted layout.
type Record struct {
	ID               int64        `json:"id"`
	FirstName        string       `json:"firstName"`
	LastName         string       `json:"lastName"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone"`
	Company          string       `json:"company"`
	Role             string       `json:"role"`
	InterestType     InterestType `json:"interestType"`
	InvestmentAmount string       `json:"investmentAmount"`
	LoanAmount       string       `json:"loanAmount"`
	AdditionalInfo   string       `json:"additionalInfo"`
	AgreeToTerms     bool         `json:"agreeToTerms"`
	MarketingConsent bool         `json:"marketingConsent"`
	Status           Status       `json:"status"`
	SubmittedAt      time.Time    `json:"submittedAt"`
	UpdatedAt        *time.Time   `json:"updatedAt,omitempty"`
}

// Input is what a signup supplies. The store assigns id, status and submittedAt.
type Input struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Company          string
	Role             string
	InterestType     InterestType
	InvestmentAmount string
	LoanAmount       string
	AdditionalInfo   string
	AgreeToTerms     bool
	MarketingConsent bool
}

// Patch is a shallow merge: every non-nil field overwrites the record's value.
// id and submittedAt are not patchable.
type Patch struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	Company          *string
	Role             *string
	InterestType     *InterestType
	InvestmentAmount *string
	LoanAmount       *string
	AdditionalInfo   *string
	AgreeToTerms     *bool
	MarketingConsent *bool
	Status           *Status
}

func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

func newRecord(id int64, in Input, now time.Time) Record {
	return Record{
		ID:               id,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            in.Email,
		Phone:            in.Phone,
		Company:          in.Company,
		Role:             in.Role,
		InterestType:     in.InterestType,
		InvestmentAmount: in.InvestmentAmount,
		LoanAmount:       in.LoanAmount,
		AdditionalInfo:   in.AdditionalInfo,
		AgreeToTerms:     in.AgreeToTerms,
		MarketingConsent: in.MarketingConsent,
		Status:           StatusPending,
		SubmittedAt:      now,
	}
}

func (r *Record) apply(p Patch, now time.Time) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&r.FirstName, p.FirstName)
	setString(&r.LastName, p.LastName)
	setString(&r.Email, p.Email)
	setString(&r.Phone, p.Phone)
	setString(&r.Company, p.Company)
	setString(&r.Role, p.Role)
	setString(&r.InvestmentAmount, p.InvestmentAmount)
	setString(&r.LoanAmount, p.LoanAmount)
	setString(&r.AdditionalInfo, p.AdditionalInfo)
	setBool(&r.AgreeToTerms, p.AgreeToTerms)
	setBool(&r.MarketingConsent, p.MarketingConsent)
	if p.InterestType != nil {
		r.InterestType = *p.InterestType
	}
	if p.Status != nil {
		r.Status = *p.Status
	}

	// updatedAt never precedes submittedAt, even if the clock stepped back.
	if now.Before(r.SubmittedAt) {
		now = r.SubmittedAt
	}
	r.UpdatedAt = &now
}
