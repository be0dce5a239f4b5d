package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// chartPayload is what the front-end chart script reads out of the partial.
type chartPayload struct {
	Title  string        `json:"title"`
	Points []seriesPoint `json:"points"`
}

// panelData drives the series_panel template: one banner, one chart, one
// caption, derived statelessly from the four form values.
type panelData struct {
	BannerClass string
	BannerText  string
	Caption     string
	ChartJSON   template.JS
}

// handleIndex renders the dashboard page with the default form values. The
// chart panel loads itself via the partial endpoint.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Indicador string
		Filtro    string
	}{
		Indicador: defaultIndicator,
		Filtro:    defaultFiltro,
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSeriesPanel re-runs the pipeline for the submitted form values and
// returns the banner + chart + caption fragment.
func (s *Server) handleSeriesPanel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	indicador := strings.TrimSpace(q.Get("indicador"))
	token := strings.TrimSpace(q.Get("token"))
	filtro := strings.TrimSpace(q.Get("filtro"))
	if indicador == "" {
		indicador = defaultIndicator
	}

	var data panelData
	doc, err := s.seriesDocument(r.Context(), indicador, token, filtro)
	switch {
	case err != nil:
		data = panelData{
			BannerClass: "danger",
			BannerText:  "Error: " + err.Error(),
			ChartJSON:   marshalChart(chartPayload{Title: "Error", Points: []seriesPoint{}}),
		}
	case doc.Count == 0:
		data = panelData{
			BannerClass: "warning",
			BannerText:  "Sin datos para los parámetros.",
			ChartJSON:   marshalChart(chartPayload{Title: "Sin datos", Points: []seriesPoint{}}),
		}
	default:
		data = panelData{
			BannerClass: "success",
			BannerText:  fmt.Sprintf("%d observaciones cargadas.", doc.Count),
			Caption: fmt.Sprintf("Última actualización: %s | Filtro: %s",
				time.Now().Format("2006-01-02 15:04:05"), doc.Filtro),
			ChartJSON: marshalChart(chartPayload{
				Title:  "Indicador " + indicador,
				Points: doc.Data,
			}),
		}
	}

	if err := s.templates.ExecuteTemplate(w, "series_panel.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Series panel template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func marshalChart(p chartPayload) template.JS {
	b, err := json.Marshal(p)
	if err != nil {
		slog.Error("Failed encoding chart payload", "error", err)
		return template.JS(`{"title":"Error","points":[]}`)
	}
	return template.JS(b)
}
