package inegi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inegidash/internal/cache"
	"inegidash/internal/core"
	"inegidash/internal/log"
)

const (
	defaultBaseURL        = "https://www.inegi.org.mx"
	defaultTimeoutSeconds = 30
	defaultCacheSize      = 256

	// BIE endpoint: indicator code and access token are path segments.
	dataPathTemplate = "/app/api/indicadores/desarrolladores/jsonxml/INDICATOR/%s/es/0700/false/BIE/2.0/%s?type=json"

	// Upstream error bodies are truncated to this many bytes in messages.
	bodySnippetLimit = 200
)

// tokenPlaceholders are values that show up when the token was never filled
// in. They fail fast, before any network call.
var tokenPlaceholders = map[string]struct{}{
	"":           {},
	"TOKEN_AQUI": {},
	`"`:          {},
}

// Config controls the INEGI client. Zero values fall back to defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
}

func (cfg Config) withDefaults() Config {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	return cfg
}

// Client fetches BIE series over HTTPS and memoizes successful results in a
// process-wide LRU keyed by the exact (indicator, token) pair. Failures are
// never cached.
type Client struct {
	config Config
	client *http.Client
	series *cache.LRUCache[core.Series]
	logger *log.Logger
}

// NewClient builds a client. A nil logger gets the package defaults.
func NewClient(cfg Config, logger *log.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentINEGI)
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		series: cache.NewLRUCache[core.Series](cfg.CacheSize),
		logger: logger,
	}
}

// CacheSize reports how many series are currently memoized.
func (c *Client) CacheSize() int { return c.series.Size() }

// Series returns the full, sorted series for an indicator. The token is
// validated before anything else; a blank or placeholder token means the
// upstream is never contacted.
func (c *Client) Series(ctx context.Context, indicador, token string) (core.Series, error) {
	if _, bad := tokenPlaceholders[strings.TrimSpace(token)]; bad {
		return nil, core.NewError(core.KindConfiguration, "falta el token del INEGI")
	}

	// The cache key is the exact pair as given, no trimming. Different
	// tokens could in principle authorize different responses.
	key := indicador + "\x1f" + token
	if s, ok := c.series.Get(key); ok {
		c.logger.Debug("series cache hit", log.FieldIndicator, indicador)
		return s, nil
	}

	s, err := c.fetch(ctx, indicador, token)
	if err != nil {
		return nil, err
	}

	c.series.Set(key, s)
	return s, nil
}

func (c *Client) fetch(ctx context.Context, indicador, token string) (core.Series, error) {
	endpoint := c.config.BaseURL + fmt.Sprintf(dataPathTemplate,
		url.PathEscape(indicador), url.PathEscape(token))

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, core.WrapError(core.KindNetwork, err, "error de red al consultar INEGI")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.KindNetwork, err, "error de red al consultar INEGI")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(core.KindNetwork, err, "error de red al consultar INEGI")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("INEGI returned an error status",
			log.FieldIndicator, indicador, log.FieldUpstream, resp.StatusCode)
		return nil, core.NewError(core.KindUpstream,
			"INEGI respondió %d: %s", resp.StatusCode, snippet(body))
	}

	series, err := decodeSeries(body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched INEGI series",
		log.FieldIndicator, indicador,
		log.FieldCount, len(series),
		log.FieldDuration, time.Since(start).Milliseconds())
	return series, nil
}

// decodeSeries validates the BIE response shape and normalizes it: only the
// first series is used, observations are sorted ascending by period, and
// OBS_VALUE is coerced to a float (nil when unparseable).
func decodeSeries(body []byte) (core.Series, error) {
	if !json.Valid(body) {
		return nil, core.NewError(core.KindDecode, "no se pudo decodificar JSON de INEGI")
	}

	var payload struct {
		Series []json.RawMessage `json:"Series"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Series) == 0 {
		return nil, core.NewError(core.KindSchema, "estructura inesperada en la respuesta de INEGI")
	}

	var first struct {
		Observations []rawObservation `json:"OBSERVATIONS"`
	}
	if err := json.Unmarshal(payload.Series[0], &first); err != nil || first.Observations == nil {
		return nil, core.NewError(core.KindSchema, "estructura inesperada en la respuesta de INEGI")
	}

	series := make(core.Series, 0, len(first.Observations))
	for _, raw := range first.Observations {
		series = append(series, core.Observation{
			Period:      raw.TimePeriod,
			Value:       parseValue(raw.ObsValue),
			GeoCoverage: raw.CoberGeo,
			Unit:        raw.Unit,
		})
	}
	series.Sort()
	return series, nil
}

// rawObservation mirrors the BIE wire format. OBS_VALUE arrives as a string
// in practice but is kept raw so numeric payloads decode too.
type rawObservation struct {
	TimePeriod string          `json:"TIME_PERIOD"`
	ObsValue   json.RawMessage `json:"OBS_VALUE"`
	CoberGeo   string          `json:"COBER_GEO"`
	Unit       string          `json:"UNIT"`
}

func parseValue(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > bodySnippetLimit {
		return s[:bodySnippetLimit]
	}
	return s
}
