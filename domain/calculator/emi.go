package calculator

import (
	"errors"
	"math"
)

// Landing page defaults.
const (
	DefaultAmount = 100000.0
	DefaultRate   = 12.0
	DefaultTenure = 12

	MaxTenureMonths = 360
	MaxAnnualRate   = 100.0
)

var ErrInvalidLoanTerms = errors.New("calculator: invalid loan terms")

type Quote struct {
	Amount        float64 `json:"amount"`
	AnnualRate    float64 `json:"rate"`
	TenureMonths  int     `json:"tenure"`
	MonthlyEMI    float64 `json:"monthlyEmi"`
	TotalPayable  float64 `json:"totalPayable"`
	TotalInterest float64 `json:"totalInterest"`
}

// MonthlyEMI is the unrounded reducing-balance instalment
// P·r·(1+r)^n / ((1+r)^n − 1) with r the monthly rate. A zero rate splits the
// principal evenly.
func MonthlyEMI(amount, annualRate float64, tenureMonths int) (float64, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidLoanTerms
	}
	if tenureMonths < 1 || tenureMonths > MaxTenureMonths {
		return 0, ErrInvalidLoanTerms
	}
	if annualRate < 0 || annualRate > MaxAnnualRate || math.IsNaN(annualRate) {
		return 0, ErrInvalidLoanTerms
	}

	n := float64(tenureMonths)
	if annualRate == 0 {
		return amount / n, nil
	}

	r := annualRate / 12 / 100
	growth := math.Pow(1+r, n)
	return amount * r * growth / (growth - 1), nil
}

// NewQuote rounds every money figure to the nearest rupee.
func NewQuote(amount, annualRate float64, tenureMonths int) (Quote, error) {
	emi, err := MonthlyEMI(amount, annualRate, tenureMonths)
	if err != nil {
		return Quote{}, err
	}

	total := math.Round(emi * float64(tenureMonths))
	return Quote{
		Amount:        amount,
		AnnualRate:    annualRate,
		TenureMonths:  tenureMonths,
		MonthlyEMI:    math.Round(emi),
		TotalPayable:  total,
		TotalInterest: math.Max(0, total-math.Round(amount)),
	}, nil
}
