// Package rpc exposes the node's query surface: JSON-RPC over HTTP for
// reads and submission, and a websocket feed of applied operations.
package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vennlabs/custodiad/internal/core/op"
	"github.com/vennlabs/custodiad/internal/core/redemption"
	"github.com/vennlabs/custodiad/internal/core/registry"
	"github.com/vennlabs/custodiad/internal/core/result"
	"github.com/vennlabs/custodiad/internal/core/settlement"
	"github.com/vennlabs/custodiad/internal/core/state"
	"github.com/vennlabs/custodiad/internal/core/types"
	"github.com/vennlabs/custodiad/internal/core/vector"
	"github.com/vennlabs/custodiad/internal/crypto"
	"github.com/vennlabs/custodiad/internal/storage/history"
)

// priceCacheSize bounds the memoized price computations. Keys include
// the clock second, so entries age out naturally as time advances.
const priceCacheSize = 4096

type priceKey struct {
	venue op.Venue
	offer uint64
	now   int64
}

// Service answers queries against the engine's ledger.
type Service struct {
	engine  *op.Engine
	history *history.Store
	hub     *Hub
	prices  *lru.Cache[priceKey, uint64]
}

// NewService wires the query surface. history and hub may be nil when
// the node runs without them.
func NewService(engine *op.Engine, hist *history.Store, hub *Hub) (*Service, error) {
	prices, err := lru.New[priceKey, uint64](priceCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{engine: engine, history: hist, hub: hub, prices: prices}, nil
}

// --- wire shapes ---

type authorityView struct {
	Initialized   bool     `json:"initialized"`
	Owner         string   `json:"owner"`
	ProposedOwner string   `json:"proposed_owner,omitempty"`
	Admins        []string `json:"admins"`
	Approvers     []string `json:"approvers"`
	Halted        bool     `json:"halted"`
}

type vectorView struct {
	ID          uint64 `json:"id"`
	ScheduledAt int64  `json:"scheduled_at"`
	AnchorAt    int64  `json:"anchor_at"`
	BasePrice   uint64 `json:"base_price"`
	Rate        int64  `json:"rate"`
	Interval    int64  `json:"interval"`
}

type offerView struct {
	ID       uint64       `json:"id"`
	TokenIn  string       `json:"token_in"`
	TokenOut string       `json:"token_out"`
	FeeBps   uint32       `json:"fee_bps"`
	Vectors  []vectorView `json:"vectors"`
}

type singleOfferView struct {
	ID                   uint64 `json:"id"`
	TokenIn              string `json:"token_in"`
	TokenOut             string `json:"token_out"`
	Price                uint64 `json:"price"`
	FeeBps               uint32 `json:"fee_bps"`
	StartAt              int64  `json:"start_at"`
	EndAt                int64  `json:"end_at"`
	Admin                string `json:"admin"`
	RequestedRedemptions uint64 `json:"requested_redemptions"`
}

type dualOfferView struct {
	ID                   uint64 `json:"id"`
	TokenIn              string `json:"token_in"`
	TokenOutOne          string `json:"token_out_one"`
	TokenOutTwo          string `json:"token_out_two"`
	PriceOne             uint64 `json:"price_one"`
	PriceTwo             uint64 `json:"price_two"`
	RatioBps             uint32 `json:"ratio_bps"`
	FeeBps               uint32 `json:"fee_bps"`
	StartAt              int64  `json:"start_at"`
	EndAt                int64  `json:"end_at"`
	Admin                string `json:"admin"`
	RequestedRedemptions uint64 `json:"requested_redemptions"`
}

type requestView struct {
	OfferID   uint64 `json:"offer_id"`
	Redeemer  string `json:"redeemer"`
	Nonce     uint64 `json:"nonce"`
	Amount    uint64 `json:"amount"`
	ExpiresAt int64  `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
	Status    string `json:"status"`
}

func viewVector(v vector.Vector) vectorView {
	return vectorView{
		ID:          v.ID,
		ScheduledAt: v.ScheduledAt,
		AnchorAt:    v.AnchorAt,
		BasePrice:   v.BasePrice,
		Rate:        v.Rate,
		Interval:    v.Interval,
	}
}

func viewOffer(o *registry.Offer) offerView {
	view := offerView{
		ID:       o.ID,
		TokenIn:  o.TokenIn.String(),
		TokenOut: o.TokenOut.String(),
		FeeBps:   o.FeeBps,
		Vectors:  []vectorView{},
	}
	for i := range o.Vectors.Slots {
		if !o.Vectors.Slots[i].IsFree() {
			view.Vectors = append(view.Vectors, viewVector(o.Vectors.Slots[i]))
		}
	}
	return view
}

func viewSingle(o *redemption.SingleOffer) singleOfferView {
	return singleOfferView{
		ID:                   o.ID,
		TokenIn:              o.TokenIn.String(),
		TokenOut:             o.TokenOut.String(),
		Price:                o.Price,
		FeeBps:               o.FeeBps,
		StartAt:              o.StartAt,
		EndAt:                o.EndAt,
		Admin:                o.Admin.String(),
		RequestedRedemptions: o.RequestedRedemptions,
	}
}

func viewDual(o *redemption.DualOffer) dualOfferView {
	return dualOfferView{
		ID:                   o.ID,
		TokenIn:              o.TokenIn.String(),
		TokenOutOne:          o.TokenOutOne.String(),
		TokenOutTwo:          o.TokenOutTwo.String(),
		PriceOne:             o.PriceOne,
		PriceTwo:             o.PriceTwo,
		RatioBps:             o.RatioBps,
		FeeBps:               o.FeeBps,
		StartAt:              o.StartAt,
		EndAt:                o.EndAt,
		Admin:                o.Admin.String(),
		RequestedRedemptions: o.RequestedRedemptions,
	}
}

func parseID(s string) (types.ID, error) {
	return types.IDFromHex(s)
}

func parseVenue(s string) (op.Venue, bool) {
	switch s {
	case "sell", "":
		return op.Sell, true
	case "buy":
		return op.Buy, true
	default:
		return 0, false
	}
}

func parseLeg(s string) (op.Leg, bool) {
	switch s {
	case "single", "":
		return op.SingleLeg, true
	case "dual":
		return op.DualLeg, true
	default:
		return 0, false
	}
}

// --- handlers ---

// FetchAuthority returns the governance state.
func (s *Service) FetchAuthority(params json.RawMessage) (any, error) {
	var view authorityView
	s.engine.Snapshot(func(st *state.State) {
		view.Initialized = st.Authority.Initialized
		view.Owner = st.Authority.Owner.String()
		if !st.Authority.ProposedOwner.IsZero() {
			view.ProposedOwner = st.Authority.ProposedOwner.String()
		}
		view.Admins = []string{}
		for _, admin := range st.Authority.Admins {
			if !admin.IsZero() {
				view.Admins = append(view.Admins, admin.String())
			}
		}
		view.Approvers = []string{}
		for _, approver := range st.Authority.Approvers {
			if !approver.IsZero() {
				view.Approvers = append(view.Approvers, approver.String())
			}
		}
		view.Halted = st.Authority.Halted
	})
	return view, nil
}

// FetchRegistry lists the live offers on one exchange venue.
func (s *Service) FetchRegistry(params json.RawMessage) (any, error) {
	var req struct {
		Venue string `json:"venue"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, badRequest("invalid fetch_registry params", err)
		}
	}
	venue, ok := parseVenue(req.Venue)
	if !ok {
		return nil, badRequest("unknown venue: "+req.Venue, nil)
	}

	offers := []offerView{}
	s.engine.Snapshot(func(st *state.State) {
		reg := &st.Sell
		if venue == op.Buy {
			reg = &st.Buy
		}
		for i := range reg.Offers {
			if !reg.Offers[i].IsFree() {
				offers = append(offers, viewOffer(&reg.Offers[i]))
			}
		}
	})
	return map[string]any{"venue": venue.String(), "offers": offers}, nil
}

// FetchOffer returns a single exchange offer with its vector table.
func (s *Service) FetchOffer(params json.RawMessage) (any, error) {
	var req struct {
		Venue   string `json:"venue"`
		OfferID uint64 `json:"offer_id"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid fetch_offer params", err)
	}
	venue, ok := parseVenue(req.Venue)
	if !ok {
		return nil, badRequest("unknown venue: "+req.Venue, nil)
	}

	var (
		view  offerView
		found bool
	)
	s.engine.Snapshot(func(st *state.State) {
		reg := &st.Sell
		if venue == op.Buy {
			reg = &st.Buy
		}
		if offer := reg.Find(req.OfferID); offer != nil {
			view = viewOffer(offer)
			found = true
		}
	})
	if !found {
		return nil, resultError(result.OfferNotFound)
	}
	return view, nil
}

// FetchRedemption returns one redemption offer, single or dual leg.
func (s *Service) FetchRedemption(params json.RawMessage) (any, error) {
	var req struct {
		Leg     string `json:"leg"`
		OfferID uint64 `json:"offer_id"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid fetch_redemption params", err)
	}
	leg, ok := parseLeg(req.Leg)
	if !ok {
		return nil, badRequest("unknown leg: "+req.Leg, nil)
	}

	var (
		view  any
		found bool
	)
	s.engine.Snapshot(func(st *state.State) {
		if leg == op.SingleLeg {
			if offer := st.Singles.Find(req.OfferID); offer != nil {
				view, found = viewSingle(offer), true
			}
			return
		}
		if offer := st.Duals.Find(req.OfferID); offer != nil {
			view, found = viewDual(offer), true
		}
	})
	if !found {
		return nil, resultError(result.OfferNotFound)
	}
	return view, nil
}

// FetchRequest returns one redemption request record.
func (s *Service) FetchRequest(params json.RawMessage) (any, error) {
	var req struct {
		OfferID  uint64 `json:"offer_id"`
		Redeemer string `json:"redeemer"`
		Nonce    uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid fetch_request params", err)
	}
	redeemer, err := parseID(req.Redeemer)
	if err != nil {
		return nil, badRequest("invalid redeemer identity", err)
	}

	key := types.RequestKey{OfferID: req.OfferID, Redeemer: redeemer, Nonce: req.Nonce}
	var (
		record redemption.Request
		found  bool
	)
	s.engine.Snapshot(func(st *state.State) {
		record, found = st.Requests[key]
	})
	if !found {
		return nil, resultError(result.RequestNotFound)
	}
	return requestView{
		OfferID:   record.Key.OfferID,
		Redeemer:  record.Key.Redeemer.String(),
		Nonce:     record.Key.Nonce,
		Amount:    record.Amount,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
		Status:    record.Status.String(),
	}, nil
}

// FetchNonce returns a principal's next expected sequence number.
func (s *Service) FetchNonce(params json.RawMessage) (any, error) {
	var req struct {
		Principal string `json:"principal"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid fetch_nonce params", err)
	}
	principal, err := parseID(req.Principal)
	if err != nil {
		return nil, badRequest("invalid principal identity", err)
	}

	var nonce uint64
	s.engine.Snapshot(func(st *state.State) {
		nonce = st.Nonces[principal]
	})
	return map[string]any{"principal": req.Principal, "nonce": nonce}, nil
}

// FetchBalance returns one holder's balance in one token.
func (s *Service) FetchBalance(params json.RawMessage) (any, error) {
	var req struct {
		Holder string `json:"holder"`
		Token  string `json:"token"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid fetch_balance params", err)
	}
	holder, err := parseID(req.Holder)
	if err != nil {
		return nil, badRequest("invalid holder identity", err)
	}
	tok, err := parseID(req.Token)
	if err != nil {
		return nil, badRequest("invalid token identity", err)
	}

	var balance uint64
	s.engine.Snapshot(func(st *state.State) {
		balance = st.Book.Balance(holder, tok)
	})
	return map[string]any{"holder": req.Holder, "token": req.Token, "balance": balance}, nil
}

// CurrentPrice computes an offer's active vector price at the node's
// clock, memoized per second.
func (s *Service) CurrentPrice(params json.RawMessage) (any, error) {
	var req struct {
		Venue   string `json:"venue"`
		OfferID uint64 `json:"offer_id"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid current_price params", err)
	}
	venue, ok := parseVenue(req.Venue)
	if !ok {
		return nil, badRequest("unknown venue: "+req.Venue, nil)
	}

	now := s.engine.Now()
	key := priceKey{venue: venue, offer: req.OfferID, now: now}
	if price, ok := s.prices.Get(key); ok {
		return map[string]any{"price": price, "at": now, "cached": true}, nil
	}

	var (
		price uint64
		res   result.Result
	)
	s.engine.Snapshot(func(st *state.State) {
		reg := &st.Sell
		if venue == op.Buy {
			reg = &st.Buy
		}
		price, res = reg.PriceAt(req.OfferID, now)
	})
	if res != result.Success {
		return nil, resultError(res)
	}
	s.prices.Add(key, price)
	return map[string]any{"price": price, "at": now, "cached": false}, nil
}

// Quote prices an exchange take without settling it: the output amount,
// the fee, and the total debit the taker would pay right now.
func (s *Service) Quote(params json.RawMessage) (any, error) {
	var req struct {
		Venue    string `json:"venue"`
		OfferID  uint64 `json:"offer_id"`
		AmountIn uint64 `json:"amount_in"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid quote params", err)
	}
	venue, ok := parseVenue(req.Venue)
	if !ok {
		return nil, badRequest("unknown venue: "+req.Venue, nil)
	}

	now := s.engine.Now()
	var (
		quote settlement.Quote
		res   result.Result
	)
	s.engine.Snapshot(func(st *state.State) {
		reg := &st.Sell
		if venue == op.Buy {
			reg = &st.Buy
		}
		offer := reg.Find(req.OfferID)
		if offer == nil {
			res = result.OfferNotFound
			return
		}
		quote, res = op.Quote(st.Begin(), offer, req.AmountIn, now)
	})
	if res != result.Success {
		return nil, resultError(res)
	}
	return map[string]any{
		"amount_out":  quote.AmountOut,
		"fee":         quote.FeeAmount,
		"total_debit": quote.TotalDebit,
		"at":          now,
	}, nil
}

// Submit decodes a signed envelope, applies it, records history, and
// feeds the event hub.
func (s *Service) Submit(params json.RawMessage) (any, error) {
	var req struct {
		Payload    string `json:"payload"`
		Signatures []struct {
			Signer    string `json:"signer"`
			Algorithm string `json:"algorithm"`
			PublicKey string `json:"public_key"`
			Signature string `json:"signature"`
		} `json:"signatures"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, badRequest("invalid submit params", err)
	}

	payload, err := hex.DecodeString(req.Payload)
	if err != nil {
		return nil, badRequest("payload is not hex", err)
	}
	operation, err := op.DecodeOperation(payload)
	if err != nil {
		return nil, badRequest("undecodable operation payload", err)
	}

	env := op.Envelope{Op: operation}
	for _, sig := range req.Signatures {
		signer, err := parseID(sig.Signer)
		if err != nil {
			return nil, badRequest("invalid signer identity", err)
		}
		algo, ok := parseAlgorithm(sig.Algorithm)
		if !ok {
			return nil, badRequest("unknown signature algorithm: "+sig.Algorithm, nil)
		}
		pub, err := hex.DecodeString(sig.PublicKey)
		if err != nil {
			return nil, badRequest("public key is not hex", err)
		}
		raw, err := hex.DecodeString(sig.Signature)
		if err != nil {
			return nil, badRequest("signature is not hex", err)
		}
		env.Signatures = append(env.Signatures, op.Signature{
			Signer:    signer,
			Algorithm: algo,
			PublicKey: pub,
			Raw:       raw,
		})
	}

	out, err := s.engine.Apply(env)
	if err != nil {
		return nil, internal("apply failed", err)
	}

	if s.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.history.Append(ctx, operation, out, time.Now()); err != nil {
			return nil, internal("history append failed", err)
		}
	}
	if s.hub != nil && out.Applied {
		s.hub.Publish(Event{
			Kind:   operation.Kind().String(),
			Actor:  operation.Actor().String(),
			Digest: hex.EncodeToString(out.Digest[:]),
			Result: out.Result.String(),
		})
	}

	return map[string]any{
		"applied": out.Applied,
		"result":  out.Result.String(),
		"code":    int(out.Result),
		"digest":  hex.EncodeToString(out.Digest[:]),
	}, nil
}

// History returns recent submissions, optionally scoped to one actor.
func (s *Service) History(params json.RawMessage) (any, error) {
	if s.history == nil {
		return nil, notFound("history store not configured")
	}
	var req struct {
		Actor string `json:"actor"`
		Limit int    `json:"limit"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, badRequest("invalid history params", err)
		}
	}
	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		records []history.Record
		err     error
	)
	if req.Actor != "" {
		actor, perr := parseID(req.Actor)
		if perr != nil {
			return nil, badRequest("invalid actor identity", perr)
		}
		records, err = s.history.ByActor(ctx, actor, req.Limit)
	} else {
		records, err = s.history.Recent(ctx, req.Limit)
	}
	if err != nil {
		return nil, internal("history query failed", err)
	}

	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, map[string]any{
			"seq":        rec.Seq,
			"digest":     rec.Digest,
			"kind":       rec.KindName,
			"actor":      rec.Actor.String(),
			"result":     rec.Result.String(),
			"applied":    rec.Applied,
			"applied_at": rec.AppliedAt.Unix(),
		})
	}
	return map[string]any{"records": out}, nil
}

func parseAlgorithm(s string) (crypto.Algorithm, bool) {
	switch s {
	case "ed25519", "":
		return crypto.Ed25519, true
	case "secp256k1":
		return crypto.Secp256k1, true
	default:
		return 0, false
	}
}
