package inegi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"inegidash/internal/core"
	"inegidash/internal/log"
)

const sampleResponse = `{
	"Series": [
		{
			"INDICADOR": "910407",
			"OBSERVATIONS": [
				{"TIME_PERIOD": "2010/03", "OBS_VALUE": "bad", "COBER_GEO": "0700"},
				{"TIME_PERIOD": "2009/06", "OBS_VALUE": "100.5", "COBER_GEO": "0700", "UNIT": "Índice"}
			]
		}
	]
}`

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Component: log.ComponentINEGI,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server, *atomic.Int64) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	c := NewClient(Config{BaseURL: ts.URL}, quietLogger())
	return c, ts, &calls
}

func kindOf(t *testing.T, err error) core.ErrorKind {
	t.Helper()
	var perr *core.Error
	if !errors.As(err, &perr) {
		t.Fatalf("error %v is not a pipeline error", err)
	}
	return perr.Kind
}

func TestSeriesRejectsPlaceholderTokens(t *testing.T) {
	c, ts, calls := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	defer ts.Close()

	for _, token := range []string{"", "   ", "TOKEN_AQUI", `"`, " TOKEN_AQUI "} {
		_, err := c.Series(context.Background(), "910407", token)
		if err == nil {
			t.Fatalf("token %q: expected error", token)
		}
		if kind := kindOf(t, err); kind != core.KindConfiguration {
			t.Fatalf("token %q: kind = %s, want configuration", token, kind)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("placeholder tokens reached the network %d times", calls.Load())
	}
}

func TestSeriesSuccessNormalizes(t *testing.T) {
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/INDICATOR/910407/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, sampleResponse)
	})
	defer ts.Close()

	s, err := c.Series(context.Background(), "910407", "abc")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len = %d, want 2", len(s))
	}

	// Sorted ascending by period even though the response was not.
	if s[0].Period != "2009/06" || s[1].Period != "2010/03" {
		t.Fatalf("periods = %s, %s", s[0].Period, s[1].Period)
	}
	if s[0].Value == nil || *s[0].Value != 100.5 {
		t.Fatalf("first value = %v, want 100.5", s[0].Value)
	}
	// "bad" coerces to nil, not an error.
	if s[1].Value != nil {
		t.Fatalf("unparseable value = %v, want nil", *s[1].Value)
	}
	if s[0].GeoCoverage != "0700" || s[0].Unit != "Índice" {
		t.Fatalf("metadata not mapped: %+v", s[0])
	}
	if s[1].Unit != "" {
		t.Fatalf("absent unit should stay empty, got %q", s[1].Unit)
	}
}

func TestSeriesUpstreamError(t *testing.T) {
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "down")
	})
	defer ts.Close()

	_, err := c.Series(context.Background(), "910407", "abc")
	if kind := kindOf(t, err); kind != core.KindUpstream {
		t.Fatalf("kind = %s, want upstream", kind)
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "down") {
		t.Fatalf("error %q missing status or body snippet", err.Error())
	}
}

func TestSeriesUpstreamBodyTruncated(t *testing.T) {
	long := strings.Repeat("x", 500)
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, long)
	})
	defer ts.Close()

	_, err := c.Series(context.Background(), "910407", "abc")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), long) {
		t.Fatal("body snippet was not truncated")
	}
	if !strings.Contains(err.Error(), strings.Repeat("x", 200)) {
		t.Fatal("truncated snippet missing from error")
	}
}

func TestSeriesDecodeError(t *testing.T) {
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>not json</html>")
	})
	defer ts.Close()

	_, err := c.Series(context.Background(), "910407", "abc")
	if kind := kindOf(t, err); kind != core.KindDecode {
		t.Fatalf("kind = %s, want decode", kind)
	}
}

func TestSeriesSchemaErrors(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"Series": []}`,
		`{"Series": "nope"}`,
		`{"Series": [{"INDICADOR": "910407"}]}`,
		`{"Series": [{"OBSERVATIONS": null}]}`,
		`[1, 2, 3]`,
	}
	for _, body := range bodies {
		body := body
		c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
		_, err := c.Series(context.Background(), "910407", "abc")
		ts.Close()
		if err == nil {
			t.Fatalf("body %s: expected error", body)
		}
		if kind := kindOf(t, err); kind != core.KindSchema {
			t.Fatalf("body %s: kind = %s, want schema", body, kind)
		}
	}
}

func TestSeriesEmptyObservations(t *testing.T) {
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Series": [{"OBSERVATIONS": []}]}`)
	})
	defer ts.Close()

	s, err := c.Series(context.Background(), "910407", "abc")
	if err != nil {
		t.Fatalf("empty observations should not fail: %v", err)
	}
	if len(s) != 0 {
		t.Fatalf("len = %d, want 0", len(s))
	}
}

func TestSeriesUsesFirstSeriesOnly(t *testing.T) {
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Series": [
			{"OBSERVATIONS": [{"TIME_PERIOD": "2020/01", "OBS_VALUE": "1"}]},
			{"OBSERVATIONS": [{"TIME_PERIOD": "2021/01", "OBS_VALUE": "2"}]}
		]}`)
	})
	defer ts.Close()

	s, err := c.Series(context.Background(), "910407", "abc")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(s) != 1 || s[0].Period != "2020/01" {
		t.Fatalf("expected only the first series, got %+v", s)
	}
}

func TestSeriesMemoization(t *testing.T) {
	c, ts, calls := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleResponse)
	})
	defer ts.Close()

	first, err := c.Series(context.Background(), "910407", "abc")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := c.Series(context.Background(), "910407", "abc")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("same pair hit the network %d times, want 1", calls.Load())
	}
	if len(first) != len(second) || first[0].Period != second[0].Period {
		t.Fatal("cache returned a different series")
	}

	// A different indicator is a different cache key.
	if _, err := c.Series(context.Background(), "628194", "abc"); err != nil {
		t.Fatalf("second indicator: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("different indicator did not refetch: %d calls", calls.Load())
	}

	// So is a different token for the same indicator.
	if _, err := c.Series(context.Background(), "910407", "xyz"); err != nil {
		t.Fatalf("second token: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("different token did not refetch: %d calls", calls.Load())
	}
	if c.CacheSize() != 3 {
		t.Fatalf("cache size = %d, want 3", c.CacheSize())
	}
}

func TestSeriesFailuresNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	c, ts, calls := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, sampleResponse)
	})
	defer ts.Close()

	if _, err := c.Series(context.Background(), "910407", "abc"); err == nil {
		t.Fatal("expected upstream error")
	}
	if c.CacheSize() != 0 {
		t.Fatal("failed fetch was cached")
	}

	fail.Store(false)
	if _, err := c.Series(context.Background(), "910407", "abc"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestFetchAndFilterScenario(t *testing.T) {
	c, ts, _ := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleResponse)
	})
	defer ts.Close()

	s, err := c.Series(context.Background(), "910407", "abc")
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	filtered := core.FilterSeries(s, "2010/01")
	if len(filtered) != 1 {
		t.Fatalf("filtered len = %d, want 1", len(filtered))
	}
	if filtered[0].Period != "2010/03" || filtered[0].Value != nil {
		t.Fatalf("filtered observation = %+v", filtered[0])
	}
}
