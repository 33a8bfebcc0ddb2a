// Package api provides the HTTP gateway over the round engine:
// authentication, wallet, game catalog, round play, and recall.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mvoronov/cascata/internal/audit"
	"github.com/mvoronov/cascata/internal/auth"
	"github.com/mvoronov/cascata/internal/config"
	"github.com/mvoronov/cascata/internal/control"
	"github.com/mvoronov/cascata/internal/domain"
	"github.com/mvoronov/cascata/internal/featurestate"
	"github.com/mvoronov/cascata/internal/game"
	"github.com/mvoronov/cascata/internal/limits"
	"github.com/mvoronov/cascata/internal/money"
	"github.com/mvoronov/cascata/internal/rng"
	"github.com/mvoronov/cascata/internal/rounds"
	"github.com/mvoronov/cascata/internal/wallet"
)

// largeWinXBet is the win-to-bet ratio above which a round is logged as
// a significant event (GLI-19 §2.8.8).
var largeWinXBet = int64(100)

// Handler contains all HTTP handlers
type Handler struct {
	auth     *auth.Service
	wallet   *wallet.Service
	limits   *limits.Service
	control  *control.Service
	engine   *game.Engine
	features *featurestate.Store
	rounds   *rounds.Store
	audit    *audit.Service
	rng      *rng.Local
	log      zerolog.Logger
}

// New creates a new API handler
func New(authSvc *auth.Service, walletSvc *wallet.Service, limitsSvc *limits.Service,
	controlSvc *control.Service, engine *game.Engine, features *featurestate.Store,
	roundStore *rounds.Store, auditSvc *audit.Service, rngLocal *rng.Local, log zerolog.Logger) *Handler {
	return &Handler{
		auth:     authSvc,
		wallet:   walletSvc,
		limits:   limitsSvc,
		control:  controlSvc,
		engine:   engine,
		features: features,
		rounds:   roundStore,
		audit:    auditSvc,
		rng:      rngLocal,
		log:      log,
	}
}

// Response helpers

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// getClientIP extracts client IP from request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// === Health & Info ===

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// RNG self-check (GLI-19 §3.3.3)
	rngHealth, err := h.rng.HealthCheck(r.Context())
	if err != nil {
		h.audit.Log(r.Context(), audit.EventRNGHealthCheck, domain.SeverityCritical,
			fmt.Sprintf("RNG health check failed: %v", err), nil,
			audit.WithComponent("rng"))
		respondError(w, http.StatusServiceUnavailable, "RNG_UNHEALTHY", "Randomness self-check failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"rng_status": rngHealth,
	})
}

// ServerInfo handles GET /
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        "Cascata",
		"version":     "1.0.0",
		"description": "Cascading reel game server",
	})
}

// === Authentication ===

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	player, err := h.auth.Register(r.Context(), &req, getClientIP(r))
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondError(w, http.StatusConflict, "USER_EXISTS", "Username or email already exists")
		} else {
			respondError(w, http.StatusBadRequest, "REGISTRATION_FAILED", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"player_id": player.ID,
		"username":  player.Username,
		"message":   "Registration successful",
	})
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), &req, getClientIP(r), r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		case errors.Is(err, auth.ErrAccountLocked):
			respondError(w, http.StatusForbidden, "ACCOUNT_LOCKED", "Account is temporarily locked")
		case errors.Is(err, auth.ErrAccountNotActive):
			respondError(w, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is not active")
		default:
			respondError(w, http.StatusInternalServerError, "LOGIN_FAILED", "Login failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token":      result.Token,
		"session_id": result.Session.ID,
		"player": map[string]interface{}{
			"id":       result.Player.ID,
			"username": result.Player.Username,
			"email":    result.Player.Email,
		},
		"expires_at": result.Session.ExpiresAt,
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	if err := h.auth.Logout(r.Context(), session.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "LOGOUT_FAILED", "Logout failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// GetSession handles GET /api/v1/auth/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	player := playerFrom(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": session.ID,
		"player": map[string]interface{}{
			"id":       player.ID,
			"username": player.Username,
			"email":    player.Email,
			"status":   player.Status,
		},
		"created_at":       session.CreatedAt,
		"last_activity_at": session.LastActivityAt,
		"expires_at":       session.ExpiresAt,
	})
}

// === Wallet ===

// GetBalance handles GET /api/v1/wallet/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	balance, err := h.wallet.GetBalance(r.Context(), player.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "BALANCE_ERROR", "Failed to get balance")
		return
	}

	respondJSON(w, http.StatusOK, balance)
}

type fundsRequest struct {
	Amount    string `json:"amount"`
	Reference string `json:"reference"`
}

func (fr *fundsRequest) parse() (money.Money, error) {
	return money.FromString(fr.Amount)
}

// Deposit handles POST /api/v1/wallet/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	var req fundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	amount, err := req.parse()
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
		return
	}

	tx, err := h.wallet.Deposit(r.Context(), player.ID, amount, req.Reference)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive")
		} else {
			respondError(w, http.StatusInternalServerError, "DEPOSIT_FAILED", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": tx.ID,
		"amount":         tx.Amount,
		"balance_after":  tx.BalanceAfter,
		"status":         tx.Status,
	})
}

// Withdraw handles POST /api/v1/wallet/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	var req fundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	amount, err := req.parse()
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
		return
	}

	tx, err := h.wallet.Withdraw(r.Context(), player.ID, amount, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			respondError(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient funds")
		case errors.Is(err, wallet.ErrInvalidAmount):
			respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive")
		default:
			respondError(w, http.StatusInternalServerError, "WITHDRAWAL_FAILED", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_id": tx.ID,
		"amount":         tx.Amount,
		"balance_after":  tx.BalanceAfter,
		"status":         tx.Status,
	})
}

// GetTransactions handles GET /api/v1/wallet/transactions
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	transactions, err := h.wallet.GetTransactions(r.Context(), player.ID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TRANSACTIONS_ERROR", "Failed to get transactions")
		return
	}

	respondJSON(w, http.StatusOK, transactions)
}

// === Limits ===

// GetLimits handles GET /api/v1/limits
func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	playerLimits, err := h.limits.GetLimits(r.Context(), player.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "LIMITS_ERROR", "Failed to get limits")
		return
	}

	respondJSON(w, http.StatusOK, playerLimits)
}

type setLimitRequest struct {
	Period string `json:"period"`
	Amount string `json:"amount"`
}

func (h *Handler) setLimit(w http.ResponseWriter, r *http.Request,
	set func(*limits.SetLimitRequest) (*domain.WagerLimits, error)) {
	player := playerFrom(r.Context())

	var req setLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	amount, err := money.FromString(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
		return
	}

	updated, err := set(&limits.SetLimitRequest{
		PlayerID: player.ID,
		Period:   req.Period,
		Amount:   amount,
	})
	if err != nil {
		if errors.Is(err, limits.ErrInvalidPeriod) {
			respondError(w, http.StatusBadRequest, "INVALID_PERIOD", "Period must be daily or weekly")
		} else {
			respondError(w, http.StatusInternalServerError, "LIMIT_ERROR", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// SetWagerLimit handles POST /api/v1/limits/wager
func (h *Handler) SetWagerLimit(w http.ResponseWriter, r *http.Request) {
	h.setLimit(w, r, func(req *limits.SetLimitRequest) (*domain.WagerLimits, error) {
		return h.limits.SetWagerLimit(r.Context(), req)
	})
}

// SetLossLimit handles POST /api/v1/limits/loss
func (h *Handler) SetLossLimit(w http.ResponseWriter, r *http.Request) {
	h.setLimit(w, r, func(req *limits.SetLimitRequest) (*domain.WagerLimits, error) {
		return h.limits.SetLossLimit(r.Context(), req)
	})
}

// === Games ===

func gameInfo(cfg *config.GameConfig) domain.GameInfo {
	return domain.GameInfo{
		ID:         cfg.ID,
		Name:       cfg.Name,
		Megaways:   cfg.Megaways,
		MinBet:     money.FromDecimal(cfg.MinBet.Decimal),
		MaxBet:     money.FromDecimal(cfg.MaxBet.Decimal),
		BuyEnabled: cfg.Buy.Enabled,
	}
}

// GetGames handles GET /api/v1/games
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	configs := h.engine.Games()

	games := make([]domain.GameInfo, len(configs))
	for i, cfg := range configs {
		games[i] = gameInfo(cfg)
	}

	respondJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	cfg, err := h.engine.Game(gameID)
	if err != nil {
		respondError(w, http.StatusNotFound, "GAME_NOT_FOUND", "Game not found")
		return
	}

	respondJSON(w, http.StatusOK, gameInfo(cfg))
}

// PlayRequest is the wire form of a round request.
type PlayRequest struct {
	GameID     string `json:"game_id"`
	Bet        string `json:"bet"`
	Mode       string `json:"mode"`
	BuyFeature bool   `json:"buy_feature"`
}

// playError is a settlement failure with its HTTP status and wire code.
type playError struct {
	status  int
	code    string
	message string
}

func (e *playError) Error() string { return e.message }

func playFailure(status int, code, message string) *playError {
	return &playError{status: status, code: code, message: message}
}

// playRound resolves and settles one full round: access check, engine
// resolution, limit enforcement, wager debit, win credit, feature-state
// persistence, and round recording. Shared by the REST and WebSocket
// paths.
func (h *Handler) playRound(r *http.Request, req *PlayRequest) (*game.RoundResult, *domain.Balance, *playError) {
	ctx := r.Context()
	player := playerFrom(ctx)
	session := sessionFrom(ctx)

	if err := h.control.CheckAccess(ctx, player.ID, req.GameID); err != nil {
		switch {
		case errors.Is(err, control.ErrGamingDisabled):
			return nil, nil, playFailure(http.StatusServiceUnavailable, "GAMING_DISABLED", "Gaming is currently disabled")
		case errors.Is(err, control.ErrGameDisabled):
			return nil, nil, playFailure(http.StatusServiceUnavailable, "GAME_DISABLED", "Game is currently disabled")
		case errors.Is(err, control.ErrPlayerDisabled):
			return nil, nil, playFailure(http.StatusForbidden, "PLAYER_DISABLED", "Account cannot access gaming")
		default:
			return nil, nil, playFailure(http.StatusInternalServerError, "ACCESS_ERROR", "Access check failed")
		}
	}

	bet, err := money.FromString(req.Bet)
	if err != nil {
		return nil, nil, playFailure(http.StatusBadRequest, "INVALID_BET", err.Error())
	}
	mode := config.BetMode(req.Mode)
	if mode == "" {
		mode = config.BetModeStandard
	}

	state, err := h.features.Load(ctx, player.ID, req.GameID)
	if err != nil {
		return nil, nil, playFailure(http.StatusInternalServerError, "STATE_ERROR", "Failed to load feature state")
	}

	result, err := h.engine.PlayRound(ctx, &game.PlayRequest{
		GameID:     req.GameID,
		Bet:        bet,
		Mode:       mode,
		BuyFeature: req.BuyFeature,
		Feature:    state,
	})
	if err != nil {
		switch {
		case errors.Is(err, game.ErrGameNotFound):
			return nil, nil, playFailure(http.StatusNotFound, "GAME_NOT_FOUND", "Game not found")
		case errors.Is(err, game.ErrInvalidBet):
			return nil, nil, playFailure(http.StatusBadRequest, "INVALID_BET", err.Error())
		default:
			h.audit.Log(ctx, audit.EventSystemError, domain.SeverityError,
				fmt.Sprintf("Round resolution failed: %v", err),
				map[string]string{"game_id": req.GameID},
				audit.WithPlayer(player.ID), audit.WithComponent("engine"))
			return nil, nil, playFailure(http.StatusInternalServerError, "GAME_ERROR", "Round could not be resolved")
		}
	}

	// Responsible-gaming limits apply to the computed wager, before any
	// balance movement.
	if result.Wager.IsPositive() {
		if err := h.limits.CheckWagerLimit(ctx, player.ID, result.Wager); err != nil {
			return nil, nil, playFailure(http.StatusForbidden, "WAGER_LIMIT", "Wager limit exceeded")
		}
		if err := h.limits.CheckLossLimit(ctx, player.ID, result.Wager); err != nil {
			return nil, nil, playFailure(http.StatusForbidden, "LOSS_LIMIT", "Loss limit exceeded")
		}
	}

	// Debit the wager; an insufficient balance voids the round before
	// any state is persisted.
	if _, err := h.wallet.PlaceWager(ctx, player.ID, result.Wager, result.GameID, result.RoundID); err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			return nil, nil, playFailure(http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient balance")
		}
		return nil, nil, playFailure(http.StatusInternalServerError, "WAGER_FAILED", "Failed to place wager")
	}

	if _, err := h.wallet.CreditWin(ctx, player.ID, result.TotalWin, result.GameID, result.RoundID); err != nil {
		// The wager is already taken; return it rather than leave the
		// round half-settled (GLI-19 §4.16).
		h.wallet.Refund(ctx, player.ID, result.Wager, result.RoundID)
		h.audit.Log(ctx, audit.EventSystemError, domain.SeverityCritical,
			fmt.Sprintf("Win credit failed, wager refunded: %v", err),
			map[string]string{"round_id": result.RoundID},
			audit.WithPlayer(player.ID), audit.WithComponent("wallet"))
		return nil, nil, playFailure(http.StatusInternalServerError, "CREDIT_FAILED", "Failed to credit win")
	}

	if err := h.features.Save(ctx, player.ID, result.GameID, result.NextFeature); err != nil {
		h.audit.Log(ctx, audit.EventSystemError, domain.SeverityCritical,
			fmt.Sprintf("Feature state save failed: %v", err),
			map[string]string{"round_id": result.RoundID},
			audit.WithPlayer(player.ID), audit.WithComponent("featurestate"))
		return nil, nil, playFailure(http.StatusInternalServerError, "STATE_ERROR", "Failed to persist feature state")
	}

	h.recordRound(r, player, session, result)

	balance, err := h.wallet.GetBalance(ctx, player.ID)
	if err != nil {
		return nil, nil, playFailure(http.StatusInternalServerError, "BALANCE_ERROR", "Failed to get balance")
	}

	return result, balance, nil
}

// Play handles POST /api/v1/games/play
func (h *Handler) Play(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, balance, perr := h.playRound(r, &req)
	if perr != nil {
		respondError(w, perr.status, perr.code, perr.message)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"result":  result,
		"balance": balance.Amount,
	})
}

// recordRound persists the round and emits its significant events.
// Recording failures are logged but do not void an already-settled
// round.
func (h *Handler) recordRound(r *http.Request, player *domain.Player, session *domain.Session, result *game.RoundResult) {
	ctx := r.Context()

	outcome, err := json.Marshal(result)
	if err != nil {
		outcome = nil
	}

	rec := &domain.RoundRecord{
		RoundID:  result.RoundID,
		PlayerID: player.ID,
		GameID:   result.GameID,
		Bet:      result.Bet,
		Mode:     string(result.Mode),
		Wager:    result.Wager,
		TotalWin: result.TotalWin,
		BuyCost:  result.BuyCost,
		Cascades: len(result.Cascades),
		Scatters: result.Scatter.Count,
		FreeSpin: result.Wager.IsZero() && result.BuyCost.IsZero(),
	}
	rec.Outcome = outcome

	if err := h.rounds.Record(ctx, rec); err != nil {
		h.log.Error().Err(err).Str("round_id", result.RoundID).Msg("failed to record round")
	}

	if result.BuyCost.IsPositive() {
		h.audit.Log(ctx, audit.EventFeatureBuy, domain.SeverityInfo,
			fmt.Sprintf("Feature bought for %s", result.BuyCost),
			map[string]string{"round_id": result.RoundID, "game_id": result.GameID},
			audit.WithPlayer(player.ID), audit.WithSession(session.ID), audit.WithIP(getClientIP(r)))
	}

	switch ev := result.Feature.(type) {
	case game.Triggered:
		h.audit.Log(ctx, audit.EventFeatureTriggered, domain.SeverityInfo,
			fmt.Sprintf("Free spins triggered: %d spins", ev.Spins),
			map[string]interface{}{"round_id": result.RoundID, "spins": ev.Spins},
			audit.WithPlayer(player.ID), audit.WithSession(session.ID))
	case game.Exhausted:
		h.audit.Log(ctx, audit.EventFeatureExhausted, domain.SeverityInfo,
			fmt.Sprintf("Free spins exhausted, feature win %s", ev.FeatureWin),
			map[string]interface{}{"round_id": result.RoundID, "feature_win": ev.FeatureWin.String()},
			audit.WithPlayer(player.ID), audit.WithSession(session.ID))
	}

	// GLI-19 §2.8.8 - large wins are significant events
	if result.TotalWin.Cmp(result.Bet.MulInt(largeWinXBet)) >= 0 && result.TotalWin.IsPositive() {
		h.audit.Log(ctx, audit.EventLargeWin, domain.SeverityWarning,
			fmt.Sprintf("Large win: %s on bet %s", result.TotalWin, result.Bet),
			map[string]interface{}{
				"round_id":  result.RoundID,
				"game_id":   result.GameID,
				"bet":       result.Bet.String(),
				"total_win": result.TotalWin.String(),
			},
			audit.WithPlayer(player.ID), audit.WithSession(session.ID))
	}
}

// GetHistory handles GET /api/v1/games/history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	history, err := h.rounds.History(r.Context(), player.ID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "HISTORY_ERROR", "Failed to get round history")
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// GetRound handles GET /api/v1/games/rounds/{id} for round recall
// (GLI-19 §4.14)
func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	player := playerFrom(r.Context())
	roundID := mux.Vars(r)["id"]

	rec, err := h.rounds.Get(r.Context(), roundID)
	if err != nil {
		if errors.Is(err, rounds.ErrRoundNotFound) {
			respondError(w, http.StatusNotFound, "ROUND_NOT_FOUND", "Round not found")
		} else {
			respondError(w, http.StatusInternalServerError, "ROUND_ERROR", "Failed to get round")
		}
		return
	}
	if rec.PlayerID != player.ID {
		respondError(w, http.StatusNotFound, "ROUND_NOT_FOUND", "Round not found")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}
