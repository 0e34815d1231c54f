package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Handler answers one JSON-RPC method.
type Handler func(params json.RawMessage) (any, error)

// Server serves the JSON-RPC surface over HTTP POST and the event feed
// over a websocket endpoint.
type Server struct {
	methods map[string]Handler
	hub     *Hub
	http    *http.Server
}

// NewServer registers the method table for a service.
func NewServer(addr string, service *Service, hub *Hub) *Server {
	s := &Server{
		methods: map[string]Handler{
			"fetch_authority":  service.FetchAuthority,
			"fetch_registry":   service.FetchRegistry,
			"fetch_offer":      service.FetchOffer,
			"fetch_redemption": service.FetchRedemption,
			"fetch_request":    service.FetchRequest,
			"fetch_nonce":      service.FetchNonce,
			"fetch_balance":    service.FetchBalance,
			"current_price":    service.CurrentPrice,
			"quote":            service.Quote,
			"submit":           service.Submit,
			"history":          service.History,
		},
		hub: hub,
	}

	mux := http.NewServeMux()
	mux.Handle("/", s)
	if hub != nil {
		mux.Handle("/ws", hub)
	}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, -32700, "parse error", nil)
		return
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		writeError(w, req.ID, -32601, "method not found: "+req.Method, nil)
		return
	}

	out, err := handler(req.Params)
	if err != nil {
		code, data := -32603, any(nil)
		var rich *goerrors.Error
		if errors.As(err, &rich) {
			code = rich.Code
			data = map[string]any{
				"category":  string(rich.Category),
				"text_code": rich.TextCode,
			}
		}
		writeError(w, req.ID, code, err.Error(), data)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"result":  out,
		"id":      req.ID,
	})
}

func writeError(w http.ResponseWriter, id any, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"error": map[string]any{
			"code":    code,
			"message": message,
			"data":    data,
		},
		"id": id,
	})
}

// ListenAndServe runs until the context is canceled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("rpc: listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.hub != nil {
			s.hub.Close()
		}
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
