// Package queries defines the read-side query types served by the engine.
package queries

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DefaultInsightLimit is how many recent insights a query returns when no
// limit is given.
const DefaultInsightLimit = 10

// GetStatusQuery requests the universe status snapshot.
type GetStatusQuery struct{}

// Validate implements bus.Query.
func (q GetStatusQuery) Validate() error { return nil }

// SearchUniverseQuery requests a substring scan across all domains.
type SearchUniverseQuery struct {
	Term string `validate:"required,min=1,max=200"`
}

// Validate implements bus.Query.
func (q SearchUniverseQuery) Validate() error {
	return validate.Struct(q)
}

// GetInsightsQuery requests the most recent insights.
type GetInsightsQuery struct {
	Limit int `validate:"gte=0,lte=100"`
}

// Validate implements bus.Query.
func (q GetInsightsQuery) Validate() error {
	return validate.Struct(q)
}
