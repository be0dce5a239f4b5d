package inegi

import (
	"context"

	"inegidash/internal/core"
)

// SeriesFetcher retrieves one BIE time series for an indicator code using a
// caller-supplied access token. Implementations return the series sorted
// ascending by period.
type SeriesFetcher interface {
	Series(ctx context.Context, indicador, token string) (core.Series, error)
}
