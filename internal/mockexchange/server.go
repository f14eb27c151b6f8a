// Package mockexchange provides a Binance shaped REST server for tests.
// It serves exchangeInfo and klines under the spot, USD-M and COIN-M API
// prefixes and records every request it receives.
package mockexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/kline-downloader/internal/types"
)

// DefaultLimit is the page size used when a request has no limit parameter.
const DefaultLimit = 500

// MaxLimit is the largest page the server returns.
const MaxLimit = 1000

// Prefixes maps each market to the path its REST root lives under.
var Prefixes = map[types.Market]string{
	types.MarketSpot:        "/api/v3",
	types.MarketUsdFutures:  "/fapi/v1",
	types.MarketCoinFutures: "/dapi/v1",
}

// Symbol is one exchangeInfo entry. An empty Status is omitted from the response.
type Symbol struct {
	Name   string
	Status string
}

// Request is a received request.
type Request struct {
	Path  string
	Query url.Values
	// RawQuery keeps the parameter order as sent.
	RawQuery string
}

// Response overrides the next response of an endpoint.
type Response struct {
	Status int
	Body   string
}

// Server is the mock exchange.
type Server struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener

	symbols  []Symbol
	candles  map[string][]types.Candle
	requests []Request
	// queued overrides, keyed by endpoint name
	overrides map[string][]Response
}

// New creates an empty server.
func New() *Server {
	return &Server{
		candles:   make(map[string][]types.Candle),
		overrides: make(map[string][]Response),
	}
}

// Start listens on address. An empty address or ":0" picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = "127.0.0.1:0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Printf("mock exchange error: %v\n", err)
		}
	}()

	return nil
}

// Router returns the HTTP routes, usable without Start through httptest.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	for _, prefix := range Prefixes {
		api := router.PathPrefix(prefix).Subrouter()
		api.HandleFunc("/exchangeInfo", s.handleExchangeInfo).Methods(http.MethodGet)
		api.HandleFunc("/klines", s.handleKlines).Methods(http.MethodGet)
	}

	router.Use(s.record)

	return router
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// BaseURL returns the scheme and host of the running server.
func (s *Server) BaseURL() string {
	if s.listener == nil {
		return ""
	}

	return "http://" + s.listener.Addr().String()
}

// APIBaseURL returns the REST root of market with a trailing slash, the form
// the downloader expects.
func (s *Server) APIBaseURL(market types.Market) string {
	return s.BaseURL() + Prefixes[market] + "/"
}

// SetSymbols replaces the symbol directory.
func (s *Server) SetSymbols(symbols ...Symbol) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.symbols = append([]Symbol(nil), symbols...)
}

// SetCandles replaces the candles served for symbol. They are sorted by open time.
func (s *Server) SetCandles(symbol string, candles []types.Candle) {
	sorted := append([]types.Candle(nil), candles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OpenTime < sorted[j].OpenTime })

	s.mu.Lock()
	defer s.mu.Unlock()

	s.candles[symbol] = sorted
}

// QueueKlines makes the next klines requests return the given responses,
// one per request, before normal service resumes.
func (s *Server) QueueKlines(responses ...Response) {
	s.queue("klines", responses)
}

// QueueExchangeInfo is QueueKlines for exchangeInfo.
func (s *Server) QueueExchangeInfo(responses ...Response) {
	s.queue("exchangeInfo", responses)
}

func (s *Server) queue(endpoint string, responses []Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[endpoint] = append(s.overrides[endpoint], responses...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Request(nil), s.requests...)
}

// KlineRequests returns the klines requests received so far.
func (s *Server) KlineRequests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Request

	for _, r := range s.requests {
		if path.Base(r.Path) == "klines" {
			out = append(out, r)
		}
	}

	return out
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Path:     r.URL.Path,
			Query:    r.URL.Query(),
			RawQuery: r.URL.RawQuery,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// popOverride returns the next queued response for endpoint, if any.
func (s *Server) popOverride(endpoint string) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queued := s.overrides[endpoint]
	if len(queued) == 0 {
		return Response{}, false
	}

	s.overrides[endpoint] = queued[1:]

	return queued[0], true
}

func writeOverride(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(resp.Body))
}

func writeError(w http.ResponseWriter, status int, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg})
}

// handleExchangeInfo handles GET {prefix}/exchangeInfo
func (s *Server) handleExchangeInfo(w http.ResponseWriter, _ *http.Request) {
	if resp, ok := s.popOverride("exchangeInfo"); ok {
		writeOverride(w, resp)

		return
	}

	s.mu.RLock()
	symbols := make([]map[string]any, 0, len(s.symbols))

	for _, sym := range s.symbols {
		entry := map[string]any{"symbol": sym.Name}
		if sym.Status != "" {
			entry["status"] = sym.Status
		}

		symbols = append(symbols, entry)
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"timezone":   "UTC",
		"serverTime": time.Now().UnixMilli(),
		"symbols":    symbols,
	})
}

// handleKlines handles GET {prefix}/klines. startTime and endTime are both
// inclusive bounds on the open time.
func (s *Server) handleKlines(w http.ResponseWriter, r *http.Request) {
	if resp, ok := s.popOverride("klines"); ok {
		writeOverride(w, resp)

		return
	}

	query := r.URL.Query()

	symbol := query.Get("symbol")
	if symbol == "" || query.Get("interval") == "" {
		writeError(w, http.StatusBadRequest, -1102, "Mandatory parameter was not sent.")

		return
	}

	start, err := optionalInt(query.Get("startTime"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, -1100, "Illegal characters found in parameter 'startTime'.")

		return
	}

	end, err := optionalInt(query.Get("endTime"), int64(^uint64(0)>>1))
	if err != nil {
		writeError(w, http.StatusBadRequest, -1100, "Illegal characters found in parameter 'endTime'.")

		return
	}

	limit, err := optionalInt(query.Get("limit"), DefaultLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, -1100, "Illegal characters found in parameter 'limit'.")

		return
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	s.mu.RLock()
	candles, ok := s.candles[symbol]
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusBadRequest, -1121, "Invalid symbol.")

		return
	}

	klines := make([][]any, 0, limit)

	for _, c := range candles {
		if c.OpenTime < start || c.OpenTime > end {
			continue
		}

		klines = append(klines, []any{
			c.OpenTime,
			c.Open,
			c.High,
			c.Low,
			c.Close,
			c.Volume,
			c.CloseTime,
			c.QuoteAssetVolume,
			c.NumberOfTrades,
			c.TakerBuyBaseAssetVolume,
			c.TakerBuyQuoteAssetVolume,
			"0",
		})

		if int64(len(klines)) == limit {
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(klines)
}

func optionalInt(value string, fallback int64) (int64, error) {
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseInt(value, 10, 64)
}
