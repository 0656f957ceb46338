package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/indicatord/internal/api/models"
	"github.com/smazurov/indicatord/internal/events"
	"github.com/smazurov/indicatord/internal/led"
	"github.com/smazurov/indicatord/internal/metrics"
	"github.com/smazurov/indicatord/internal/metrics/exporters"
	"github.com/smazurov/indicatord/internal/patterns"
)

// mockLED records requests and keeps a fake committed state.
type mockLED struct {
	mu      sync.Mutex
	snap    led.Snapshot
	calls   []string
	err     error
	defined map[string]led.Pattern
}

func newMockLED() *mockLED {
	return &mockLED{
		snap: led.Snapshot{
			State:      led.State{Level: 255},
			Style:      led.StyleOff,
			Backend:    "mock",
			CanBreathe: true,
			BreathType: led.RampHalfSine,
		},
		defined: map[string]led.Pattern{},
	}
}

func (m *mockLED) record(call string) (led.Snapshot, error) {
	m.calls = append(m.calls, call)
	return m.snap, m.err
}

func (m *mockLED) Snapshot(context.Context) (led.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.err
}

func (m *mockLED) SetPattern(_ context.Context, r, g, b, onMs, offMs int, source string) (led.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil {
		m.snap.State.R, m.snap.State.G, m.snap.State.B = r, g, b
		m.snap.State.OnMs, m.snap.State.OffMs = onMs, offMs
		m.snap.Style = m.snap.State.Style()
	}
	return m.record(fmt.Sprintf("pattern(%d,%d,%d,%d,%d,%s)", r, g, b, onMs, offMs, source))
}

func (m *mockLED) SetBreathing(_ context.Context, enable bool, source string) (led.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record(fmt.Sprintf("breathing(%t,%s)", enable, source))
}

func (m *mockLED) SetBrightness(_ context.Context, level int, source string) (led.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.State.Level = level
	return m.record(fmt.Sprintf("brightness(%d,%s)", level, source))
}

func (m *mockLED) Activate(_ context.Context, name, source string) (led.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.defined[name]; !ok {
		return led.Snapshot{}, fmt.Errorf("%w: %s", led.ErrUnknownPattern, name)
	}
	m.snap.Pattern = name
	return m.record(fmt.Sprintf("activate(%s,%s)", name, source))
}

func (m *mockLED) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type mockBacklight struct {
	level, raw int
	err        error
}

func (b *mockBacklight) Name() string { return "panel0" }
func (b *mockBacklight) Max() int     { return 1000 }

func (b *mockBacklight) SetBrightness(level int) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.level, b.raw = level, level*4
	return b.raw, nil
}

func (b *mockBacklight) Brightness() (int, int, error) {
	return b.level, b.raw, b.err
}

type staticPatterns []patterns.Named

func (p staticPatterns) List() []patterns.Named { return p }

func newTestServer(t *testing.T, opts *Options) *httptest.Server {
	t.Helper()
	if opts.AuthUsername == "" {
		opts.AuthUsername, opts.AuthPassword = "test", "test"
	}
	ts := httptest.NewServer(NewServer(opts).GetMux())
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, body string, auth bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.SetBasicAuth("test", "test")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestPublicEndpointsSkipAuth(t *testing.T) {
	ts := newTestServer(t, &Options{})

	for _, path := range []string{"/api/health", "/api/version"} {
		resp := doRequest(t, http.MethodGet, ts.URL+path, "", false)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}

	health := decode[models.HealthData](t, doRequest(t, http.MethodGet, ts.URL+"/api/health", "", false))
	if health.Status != "ok" {
		t.Errorf("health status = %q, want ok", health.Status)
	}
}

func TestBasicAuth(t *testing.T) {
	ts := newTestServer(t, &Options{LED: newMockLED()})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "bad base64", header: "Basic !!!", want: http.StatusUnauthorized},
		{name: "no colon", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("test")), want: http.StatusUnauthorized},
		{name: "wrong password", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("test:nope")), want: http.StatusUnauthorized},
		{name: "valid", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("test:test")), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/led", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

func TestGetLED(t *testing.T) {
	ts := newTestServer(t, &Options{LED: newMockLED()})

	got := decode[models.LEDData](t, doRequest(t, http.MethodGet, ts.URL+"/api/led", "", true))
	if got.Backend != "mock" || got.Style != "off" || got.Level != 255 {
		t.Errorf("GET /api/led = %+v", got)
	}
	if !got.CanBreathe || got.BreathType != "half-sine" {
		t.Errorf("breathing capabilities = %v/%q", got.CanBreathe, got.BreathType)
	}
}

func TestSetPattern(t *testing.T) {
	mock := newMockLED()
	ts := newTestServer(t, &Options{LED: mock})

	resp := doRequest(t, http.MethodPut, ts.URL+"/api/led/pattern", `{"r":255,"g":0,"b":0,"on_ms":500,"off_ms":500}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[models.LEDData](t, resp)
	if got.Style != "blink" || got.R != 255 {
		t.Errorf("response = %+v, want blinking red", got)
	}

	calls := mock.getCalls()
	if len(calls) != 1 || calls[0] != "pattern(255,0,0,500,500,api)" {
		t.Errorf("calls = %v", calls)
	}
}

func TestSetPatternValidation(t *testing.T) {
	mock := newMockLED()
	ts := newTestServer(t, &Options{LED: mock})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "color above range", body: `{"r":300,"g":0,"b":0}`, want: http.StatusUnprocessableEntity},
		{name: "negative period", body: `{"r":1,"g":0,"b":0,"on_ms":-1}`, want: http.StatusUnprocessableEntity},
		{name: "period too long", body: `{"r":1,"g":0,"b":0,"on_ms":60001,"off_ms":10}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPut, ts.URL+"/api/led/pattern", tt.body, true)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	if calls := mock.getCalls(); len(calls) != 0 {
		t.Errorf("invalid requests reached the LED: %v", calls)
	}
}

func TestBreathingAndBrightness(t *testing.T) {
	mock := newMockLED()
	ts := newTestServer(t, &Options{LED: mock})

	if resp := doRequest(t, http.MethodPut, ts.URL+"/api/led/breathing", `{"enabled":true}`, true); resp.StatusCode != http.StatusOK {
		t.Fatalf("breathing status = %d", resp.StatusCode)
	}
	resp := doRequest(t, http.MethodPut, ts.URL+"/api/led/brightness", `{"level":64}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("brightness status = %d", resp.StatusCode)
	}
	if got := decode[models.LEDData](t, resp); got.Level != 64 {
		t.Errorf("level = %d, want 64", got.Level)
	}

	want := []string{"breathing(true,api)", "brightness(64,api)"}
	calls := mock.getCalls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestLEDServiceErrors(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ts := newTestServer(t, &Options{})
		resp := doRequest(t, http.MethodGet, ts.URL+"/api/led", "", true)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
	})

	t.Run("loop stopped", func(t *testing.T) {
		mock := newMockLED()
		mock.err = errors.New("loop: stopped")
		ts := newTestServer(t, &Options{LED: mock})
		resp := doRequest(t, http.MethodPut, ts.URL+"/api/led/brightness", `{"level":10}`, true)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", resp.StatusCode)
		}
	})
}

func TestNamedPatterns(t *testing.T) {
	mock := newMockLED()
	mock.defined["charging"] = led.Pattern{R: 255, G: 128, OnMs: 1000, OffMs: 1000, Breathe: true}
	list := staticPatterns{
		{Name: "charging", Pattern: mock.defined["charging"]},
		{Name: "full", Pattern: led.Pattern{G: 255}},
	}
	ts := newTestServer(t, &Options{LED: mock, Patterns: list})

	got := decode[models.PatternsData](t, doRequest(t, http.MethodGet, ts.URL+"/api/led/patterns", "", true))
	if got.Count != 2 || got.Patterns[0].Name != "charging" || !got.Patterns[0].Breathe || got.Patterns[1].G != 255 {
		t.Errorf("patterns = %+v", got)
	}

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/led/patterns/charging/activate", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d", resp.StatusCode)
	}
	if state := decode[models.LEDData](t, resp); state.Pattern != "charging" {
		t.Errorf("active pattern = %q, want charging", state.Pattern)
	}

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/led/patterns/missing/activate", "", true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown pattern status = %d, want 404", resp.StatusCode)
	}
}

func TestPatternsWithoutStore(t *testing.T) {
	ts := newTestServer(t, &Options{LED: newMockLED()})

	got := decode[models.PatternsData](t, doRequest(t, http.MethodGet, ts.URL+"/api/led/patterns", "", true))
	if got.Count != 0 || got.Patterns == nil {
		t.Errorf("patterns = %+v, want empty list", got)
	}
}

func TestBacklight(t *testing.T) {
	dev := &mockBacklight{}
	ts := newTestServer(t, &Options{Backlight: dev})

	resp := doRequest(t, http.MethodPut, ts.URL+"/api/backlight", `{"level":100}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}
	got := decode[models.BacklightData](t, resp)
	if got.Device != "panel0" || got.Level != 100 || got.Raw != 400 || got.Max != 1000 {
		t.Errorf("PUT response = %+v", got)
	}

	got = decode[models.BacklightData](t, doRequest(t, http.MethodGet, ts.URL+"/api/backlight", "", true))
	if got.Level != 100 || got.Raw != 400 {
		t.Errorf("GET response = %+v", got)
	}

	if resp := doRequest(t, http.MethodPut, ts.URL+"/api/backlight", `{"level":256}`, true); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("out of range status = %d, want 422", resp.StatusCode)
	}

	dev.err = errors.New("write failed")
	if resp := doRequest(t, http.MethodGet, ts.URL+"/api/backlight", "", true); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("read error status = %d, want 500", resp.StatusCode)
	}
}

func TestBacklightUnavailable(t *testing.T) {
	ts := newTestServer(t, &Options{})
	resp := doRequest(t, http.MethodGet, ts.URL+"/api/backlight", "", true)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestPrometheusEndpoint(t *testing.T) {
	metrics.LED{}.ObserveRequest("api-test", "value")
	ts := newTestServer(t, &Options{PrometheusHandler: exporters.HTTPHandler()})

	resp := doRequest(t, http.MethodGet, ts.URL+"/metrics", "", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "indicatord_led_requests_total") {
		t.Error("expected LED metrics in /metrics output")
	}
}

func TestLogLevels(t *testing.T) {
	ts := newTestServer(t, &Options{})

	resp := doRequest(t, http.MethodPut, ts.URL+"/api/logs/levels/sysfs", `{"level":"debug"}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", resp.StatusCode)
	}
	got := decode[models.LogLevelsData](t, resp)
	if got.Levels["sysfs"] != "debug" {
		t.Errorf("levels[sysfs] = %q, want debug", got.Levels["sysfs"])
	}

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/logs/levels", "", true)
	if got := decode[models.LogLevelsData](t, resp); got.Levels["sysfs"] != "debug" {
		t.Errorf("GET levels[sysfs] = %q, want debug", got.Levels["sysfs"])
	}

	resp = doRequest(t, http.MethodPut, ts.URL+"/api/logs/levels/sysfs", `{"level":"loud"}`, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid level status = %d, want 400", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPut, ts.URL+"/api/logs/levels/sysfs", `{"level":""}`, true)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("reset status = %d, want 200", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &Options{EventBus: events.New()})

	resp := doRequest(t, http.MethodOptions, ts.URL+"/api/led", "", false)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
