package validation

import (
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/request"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
)

// ValidateCreatePortfolio validates a portfolio creation request.
// The name is required; the opening cash balance may be any finite amount.
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	var c collector
	if strings.TrimSpace(req.Name) == "" {
		c.add("name", apperrors.ErrMissingName, "")
	}
	return c.err()
}
