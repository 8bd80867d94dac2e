package vpic

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/vpick/internal/catalog"
)

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: url, MaxRetries: retries, RetryWait: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/api/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != "/api" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatal("parseBaseURL accepted a url without host")
	}
}

func TestClient_FetchesEndpointsAndMapsFields(t *testing.T) {
	t.Parallel()

	var gotUserAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent.Store(r.Header.Get("User-Agent"))
		if r.URL.Query().Get("format") != "json" {
			http.Error(w, "format required", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/vehicles/getallmakes":
			_, _ = w.Write([]byte(`{"Count":2,"Message":"Response returned successfully","SearchCriteria":null,
				"Results":[{"Make_ID":440,"Make_Name":"ASTON MARTIN"},{"Make_ID":441,"Make_Name":"TESLA"}]}`))
		case "/api/vehicles/GetVehicleTypesForMakeId/441":
			_, _ = w.Write([]byte(`{"Count":1,"Message":"ok","SearchCriteria":"Make ID: 441",
				"Results":[{"VehicleTypeId":2,"VehicleTypeName":"Passenger Car"}]}`))
		case "/api/vehicles/GetModelsForMakeId/441":
			_, _ = w.Write([]byte(`{"Count":2,"Message":"ok","SearchCriteria":"Make ID: 441",
				"Results":[{"Make_ID":441,"Make_Name":"TESLA","Model_ID":1685,"Model_Name":"Model S"},
				{"Make_ID":441,"Make_Name":"TESLA","Model_ID":10199,"Model_Name":"Model X"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL+"/api", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	makes, err := c.FetchMakes(ctx)
	if err != nil {
		t.Fatalf("FetchMakes returned error: %v", err)
	}
	wantMakes := []catalog.Make{{ID: 440, Name: "ASTON MARTIN"}, {ID: 441, Name: "TESLA"}}
	if !reflect.DeepEqual(makes, wantMakes) {
		t.Fatalf("FetchMakes = %#v, want %#v", makes, wantMakes)
	}

	types, err := c.FetchTypesForMake(ctx, 441)
	if err != nil {
		t.Fatalf("FetchTypesForMake returned error: %v", err)
	}
	if !reflect.DeepEqual(types, []catalog.VehicleType{{ID: 2, Name: "Passenger Car"}}) {
		t.Fatalf("FetchTypesForMake = %#v", types)
	}

	models, err := c.FetchModelsForMake(ctx, 441)
	if err != nil {
		t.Fatalf("FetchModelsForMake returned error: %v", err)
	}
	wantModels := []catalog.VehicleModel{
		{ID: 1685, Name: "Model S", MakeID: 441, MakeName: "TESLA"},
		{ID: 10199, Name: "Model X", MakeID: 441, MakeName: "TESLA"},
	}
	if !reflect.DeepEqual(models, wantModels) {
		t.Fatalf("FetchModelsForMake = %#v, want %#v", models, wantModels)
	}

	if ua, _ := gotUserAgent.Load().(string); !strings.HasPrefix(ua, "vpick/") {
		t.Fatalf("User-Agent = %q, want vpick/*", ua)
	}
}

func TestClient_EmptyResultsAreNotNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Count":0,"Message":"ok","SearchCriteria":null,"Results":[]}`))
	}))
	t.Cleanup(server.Close)

	types, err := newTestClient(t, server.URL, 0).FetchTypesForMake(context.Background(), 9)
	if err != nil {
		t.Fatalf("FetchTypesForMake returned error: %v", err)
	}
	if types == nil || len(types) != 0 {
		t.Fatalf("FetchTypesForMake = %#v, want empty slice", types)
	}
}

func TestClient_ValidatesKeyBeforeRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL, 0)
	for _, id := range []int{0, -3} {
		if _, err := c.FetchTypesForMake(context.Background(), id); !catalog.IsValidation(err) {
			t.Fatalf("FetchTypesForMake(%d) error = %v, want validation error", id, err)
		}
		if _, err := c.FetchModelsForMake(context.Background(), id); !catalog.IsValidation(err) {
			t.Fatalf("FetchModelsForMake(%d) error = %v, want validation error", id, err)
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("server saw %d requests, want none", hits.Load())
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"Results":[{"Make_ID":1,"Make_Name":"A"}]}`))
	}))
	t.Cleanup(server.Close)

	makes, err := newTestClient(t, server.URL, 3).FetchMakes(context.Background())
	if err != nil {
		t.Fatalf("FetchMakes returned error: %v", err)
	}
	if len(makes) != 1 || hits.Load() != 3 {
		t.Fatalf("makes=%d hits=%d, want 1 make after 3 attempts", len(makes), hits.Load())
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(t, server.URL, 2).FetchModelsForMake(context.Background(), 5)
	if !catalog.IsNetwork(err) {
		t.Fatalf("error = %v, want network error", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusBadGateway {
		t.Fatalf("error = %v, want status 502", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("hits = %d, want 3", hits.Load())
	}
}

func TestClient_HTTPErrorAndDecodeErrorAreNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch {
		case strings.HasSuffix(r.URL.Path, "/getallmakes"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL, 5)

	_, err := c.FetchMakes(context.Background())
	if !catalog.IsNetwork(err) || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchMakes error = %v, want decode network error", err)
	}

	_, err = c.FetchTypesForMake(context.Background(), 1)
	if !catalog.IsNetwork(err) || !strings.Contains(err.Error(), "returned status 404") {
		t.Fatalf("FetchTypesForMake error = %v, want status 404 error", err)
	}

	if hits.Load() != 2 {
		t.Fatalf("hits = %d, want one request per call", hits.Load())
	}
}

func TestClient_TransportErrorIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url, 0).FetchMakes(context.Background())
	if !catalog.IsNetwork(err) {
		t.Fatalf("error = %v, want network error", err)
	}
}

func TestClient_RateLimitThrottles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Results":[]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL, RateLimit: 20, Burst: 1})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	start := time.Now()
	for range 3 {
		if _, err := c.FetchMakes(context.Background()); err != nil {
			t.Fatalf("FetchMakes returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("3 requests at 20/s took %v, want >= 100ms", elapsed)
	}
}

func TestClient_CancelledContextStopsRetrying(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, server.URL, 10).FetchMakes(ctx)
	if !catalog.IsNetwork(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want cancelled network error", err)
	}
}
