package http

import (
	"context"
	"net/http"
	"net/url"

	"inegidash/internal/core"
)

const (
	defaultIndicator = "910407"
	defaultFiltro    = "2005/01"
)

// seriesPoint is one chart point. Y stays null when the upstream value was
// not numeric.
type seriesPoint struct {
	X string   `json:"x"`
	Y *float64 `json:"y"`
}

// seriesDocument is the JSON adapter output shared by the API endpoint and
// the CLI.
type seriesDocument struct {
	Indicator string        `json:"indicator"`
	Filtro    string        `json:"filtro"`
	Count     int           `json:"count"`
	Data      []seriesPoint `json:"data"`
	Message   string        `json:"message,omitempty"`
}

// buildSeriesDocument runs the filter over an already-fetched series and
// shapes the result as the JSON document.
func buildSeriesDocument(indicador, filtro string, series core.Series) seriesDocument {
	norm := core.NormalizeFilter(filtro)
	filtered := series.From(norm)

	doc := seriesDocument{
		Indicator: indicador,
		Filtro:    norm,
		Count:     len(filtered),
		Data:      make([]seriesPoint, 0, len(filtered)),
	}
	for _, obs := range filtered {
		doc.Data = append(doc.Data, seriesPoint{X: obs.Period, Y: obs.Value})
	}
	if doc.Count == 0 {
		doc.Message = "Sin datos para los parámetros proporcionados"
	}
	return doc
}

// seriesDocument fetches (through the cache) and filters, returning the
// JSON document or the pipeline error.
func (s *Server) seriesDocument(ctx context.Context, indicador, token, filtro string) (seriesDocument, error) {
	series, err := s.fetcher.Series(ctx, indicador, token)
	if err != nil {
		return seriesDocument{}, err
	}
	return buildSeriesDocument(indicador, filtro, series), nil
}

// handleAPISeries implements GET /api/series?indicador=...&token=...&filtro=...
func (s *Server) handleAPISeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	indicador := queryOrDefault(q, "indicador", defaultIndicator)
	token := queryOrDefault(q, "token", "")
	filtro := queryOrDefault(q, "filtro", defaultFiltro)

	doc, err := s.seriesDocument(r.Context(), indicador, token, filtro)
	if err != nil {
		writeErrorJSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// queryOrDefault returns the default only when the parameter is absent; an
// explicitly empty parameter stays empty.
func queryOrDefault(q url.Values, key, def string) string {
	if !q.Has(key) {
		return def
	}
	return q.Get(key)
}
