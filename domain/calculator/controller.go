package calculator

import (
	"github.com/Vijayesvar/PLEDG-MF/config/router"
)

// EMIQuery leaves absent parameters nil so the landing page defaults apply.
type EMIQuery struct {
	Amount *float64 `form:"amount" binding:"omitempty,gt=0"`
	Rate   *float64 `form:"rate" binding:"omitempty,min=0,max=100"`
	Tenure *int     `form:"tenure" binding:"omitempty,min=1,max=360"`
}

func (q EMIQuery) terms() (float64, float64, int) {
	amount, rate, tenure := DefaultAmount, DefaultRate, DefaultTenure
	if q.Amount != nil {
		amount = *q.Amount
	}
	if q.Rate != nil {
		rate = *q.Rate
	}
	if q.Tenure != nil {
		tenure = *q.Tenure
	}
	return amount, rate, tenure
}

func NewCalculatorController() *router.RESTController {
	return router.NewVersionedRESTController(
		"CalculatorController",
		"v1",
		"/calculator",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddGetHandler(c, nil, "/emi", emiHandler)
		},
	)
}

func emiHandler(ctx *router.RequestContext) *router.ServiceResult {
	var query EMIQuery

	if err := ctx.ShouldBindQuery(&query); err != nil {
		return router.BindingErrorResult(err, &query)
	}

	quote, err := NewQuote(query.terms())
	if err != nil {
		router.GetLogger(ctx).Warn("Rejected EMI query", "error", err)
		return router.BadRequestResult("Invalid loan terms", nil)
	}

	return router.OKResult(quote, "EMI calculated successfully")
}
