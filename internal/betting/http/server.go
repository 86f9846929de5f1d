package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-core/internal/betslip"
	"github.com/radieske/sportsbook-core/internal/betting/dto"
	"github.com/radieske/sportsbook-core/internal/cashout"
	"github.com/radieske/sportsbook-core/internal/wallet"
)

// Wallet é o subconjunto da carteira exposto pela API pública.
type Wallet interface {
	GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error)
}

// Slips carrega slips pra consulta.
type Slips interface {
	Get(ctx context.Context, slipID string) (betslip.Slip, []betslip.Bet, error)
}

// Server expõe a API pública do core: apostas, cashout e carteira.
type Server struct {
	log      *zap.Logger
	builder  *betslip.Builder
	slips    Slips
	cashout  *cashout.Service
	wallet   Wallet
	validate *validator.Validate
}

func NewServer(log *zap.Logger, b *betslip.Builder, s Slips, c *cashout.Service, w Wallet) *Server {
	return &Server{
		log:      log,
		builder:  b,
		slips:    s,
		cashout:  c,
		wallet:   w,
		validate: validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/betslips", s.placeBetSlip)    // POST
	mux.HandleFunc("/betslips/", s.betslipSubtree) // GET /betslips/{id} | GET/POST /betslips/{id}/cashout
	mux.HandleFunc("/wallet", s.getWallet)         // GET ?userId=...
	mux.HandleFunc("/wallet/deposit", s.deposit)   // POST
	return mux
}

func (s *Server) placeBetSlip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PlaceBetSlipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeStatusJSON(w, http.StatusBadRequest, dto.PlaceBetSlipResponse{OK: false, Error: "invalid payload"})
		return
	}

	legs := make([]betslip.LegRequest, len(req.Legs))
	for i, l := range req.Legs {
		legs[i] = betslip.LegRequest{
			FixtureID:   l.FixtureID,
			MarketID:    l.MarketID,
			Specifier:   l.Specifier,
			Outcome:     l.OutcomeID,
			ClaimedOdds: l.ClaimedOdds,
		}
	}

	slip, err := s.builder.Place(r.Context(), betslip.Request{
		PlayerID:   req.PlayerID,
		StakeCents: req.StakeCents,
		UseBonus:   req.UseBonus,
		Legs:       legs,
	})
	if err != nil {
		status, reason := rejectionFor(err)
		if status == http.StatusInternalServerError {
			s.log.Error("place betslip failed", zap.Error(err))
		}
		writeStatusJSON(w, status, dto.PlaceBetSlipResponse{OK: false, Error: reason})
		return
	}

	writeStatusJSON(w, http.StatusCreated, dto.PlaceBetSlipResponse{OK: true, SlipID: slip.ID})
}

func (s *Server) betslipSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/betslips/")
	if rest == "" {
		http.Error(w, "slip id required", http.StatusBadRequest)
		return
	}

	if strings.HasSuffix(rest, "/cashout") {
		slipID := strings.TrimSuffix(rest, "/cashout")
		switch r.Method {
		case http.MethodGet:
			s.priceCashout(w, r, slipID)
		case http.MethodPost:
			s.executeCashout(w, r, slipID)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.getBetSlip(w, r, rest)
}

func (s *Server) getBetSlip(w http.ResponseWriter, r *http.Request, slipID string) {
	slip, legs, err := s.slips.Get(r.Context(), slipID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	resp := dto.BetSlipResponse{
		SlipID:               slip.ID,
		PlayerID:             slip.PlayerID,
		StakeCents:           slip.StakeCents,
		Odds:                 slip.Odds,
		PotentialPayoutCents: slip.PotentialPayoutCents,
		Status:               string(slip.Status),
		Result:               string(slip.Result),
		CashoutValueCents:    slip.CashoutValueCents,
		CashoutAt:            slip.CashoutAt,
	}
	for _, l := range legs {
		resp.Legs = append(resp.Legs, dto.LegView{
			FixtureID: l.FixtureID,
			MarketID:  l.MarketID,
			Specifier: l.Specifier,
			OutcomeID: l.Outcome,
			Price:     l.Price,
			Status:    string(l.Status),
			Result:    string(l.Result),
		})
	}
	writeJSON(w, resp)
}

func (s *Server) priceCashout(w http.ResponseWriter, r *http.Request, slipID string) {
	offer, err := s.cashout.Price(r.Context(), slipID)
	if err != nil {
		if errors.Is(err, betslip.ErrSlipNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.log.Error("cashout pricing failed", zap.String("slip_id", slipID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, offerResponse(offer))
}

func (s *Server) executeCashout(w http.ResponseWriter, r *http.Request, slipID string) {
	_, err := s.cashout.Execute(r.Context(), slipID)
	if err != nil {
		if errors.Is(err, betslip.ErrSlipNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, cashout.ErrUnavailable) {
			writeStatusJSON(w, http.StatusUnprocessableEntity,
				dto.CashoutExecuteResponse{OK: false, Error: err.Error()})
			return
		}
		// falha de infra: sem vazamento de detalhe interno
		s.log.Error("cashout execution failed", zap.String("slip_id", slipID), zap.Error(err))
		writeStatusJSON(w, http.StatusInternalServerError,
			dto.CashoutExecuteResponse{OK: false, Error: "internal error"})
		return
	}
	writeJSON(w, dto.CashoutExecuteResponse{OK: true})
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	_, bal, err := s.wallet.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: userID, BalanceCents: bal})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.wallet.Deposit(r.Context(), req.UserID, req.AmountCents, req.ExternalRef)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: req.UserID, BalanceCents: bal})
}

// rejectionFor mapeia as rejeições de negócio pra razões legíveis.
// Qualquer erro fora do catálogo vira falha genérica (infra).
func rejectionFor(err error) (int, string) {
	switch {
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "Insufficient balance"
	case errors.Is(err, betslip.ErrStaleOdds):
		return http.StatusConflict, "changed odds"
	case errors.Is(err, betslip.ErrMarketUnavailable):
		return http.StatusUnprocessableEntity, "market unavailable"
	case errors.Is(err, betslip.ErrOverTierLimit):
		return http.StatusUnprocessableEntity, "exceeds your current limit"
	case errors.Is(err, betslip.ErrOverSlipWinCap),
		errors.Is(err, betslip.ErrOverDailyWinCap):
		return http.StatusUnprocessableEntity, "exceeds maximum potential win"
	case errors.Is(err, betslip.ErrSameGameRestricted):
		return http.StatusUnprocessableEntity, "same-game multi not allowed for these selections"
	case errors.Is(err, wallet.ErrNoActiveBonus):
		return http.StatusUnprocessableEntity, "no active bonus"
	case errors.Is(err, wallet.ErrNotFound):
		return http.StatusUnprocessableEntity, "no wallet for player"
	case errors.Is(err, betslip.ErrNoLegs), errors.Is(err, betslip.ErrInvalidStake):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func offerResponse(o cashout.Offer) dto.CashoutOfferResponse {
	return dto.CashoutOfferResponse{
		Available:         o.Available,
		CashoutValueCents: o.CashoutValueCents,
		CurrentOdds:       o.CurrentOdds,
		PotentialWinCents: o.PotentialWinCents,
		StakeCents:        o.StakeCents,
		Reason:            o.Reason,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatusJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
