package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mandisim/internal/config"
	"mandisim/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP surface the presentation layer consumes. It holds no
// game state of its own; everything flows through the sandbox session.
type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	sandbox *game.Session
	mux     *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, sandbox *game.Session) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		sandbox: sandbox,
		mux:     chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/market/commodities", s.handleCommodities)
		r.Get("/market/commodities/{name}", s.handleCommodity)
		r.Get("/market/prices/{name}", s.handlePrice)
		r.Post("/market/tick", s.handleTick)

		r.Get("/player", s.handlePlayer)
		r.Post("/player", s.handleCreatePlayer)
		r.Get("/player/achievements", s.handleAchievements)
		r.Get("/levels", s.handleLevels)
		r.Get("/bots", s.handleBots)

		r.Get("/contracts", s.handleContracts)
		r.Post("/contracts/offer", s.handleOffer)
		r.Get("/contracts/{id}", s.handleContract)
		r.Delete("/contracts/{id}", s.handleDeleteContract)
		r.Post("/contracts/{id}/evaluate", s.handleEvaluate)
		r.Post("/contracts/{id}/accept", s.handleAccept)
		r.Post("/contracts/{id}/reject", s.handleReject)
		r.Post("/contracts/{id}/complete", s.handleComplete)

		r.Get("/ai/contracts", s.handleAIContracts)
		r.Post("/ai/contracts/generate", s.handleGenerateAIContracts)

		r.Post("/reset", s.handleReset)
	})
}

func (s *Server) handleCommodities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"commodities": s.sandbox.Market.AllCommodities()})
}

func (s *Server) handleCommodity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, ok := s.sandbox.Market.GetCommodity(name)
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrCommodityNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	price := s.sandbox.Market.CurrentPrice(name)
	if price <= 0 {
		writeError(w, http.StatusNotFound, game.ErrCommodityNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commodity": name, "price": price})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if err := s.sandbox.Market.UpdatePrices(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commodities": s.sandbox.Market.AllCommodities()})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	p, ok, err := s.sandbox.Store.Player(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrNoPlayer.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if p, ok, err := s.sandbox.Store.Player(r.Context()); err == nil && ok {
		// One player per world; creating again returns the existing record.
		writeJSON(w, http.StatusOK, p)
		return
	}
	p, err := s.sandbox.Store.CreateNewPlayer(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	p, ok, err := s.sandbox.Store.Player(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unlocked := []string{}
	if ok {
		unlocked = p.Achievements
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": game.Achievements,
		"unlocked":     unlocked,
	})
}

func (s *Server) handleLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"levels": game.Levels})
}

func (s *Server) handleBots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"bots": s.sandbox.Bot.Profiles()})
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	var (
		out []game.Contract
		err error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "":
		out, err = s.sandbox.Store.Contracts(r.Context())
	case string(game.RoleFarmer), string(game.RoleBuyer):
		out, err = s.sandbox.Store.ContractsByRole(r.Context(), game.Role(role))
	default:
		writeError(w, http.StatusBadRequest, "role must be farmer or buyer")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": out})
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Commodity     string `json:"commodity"`
		Quantity      int64  `json:"quantity"`
		ContractPrice int64  `json:"contract_price"`
		Role          string `json:"role"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	role := game.RoleFarmer
	if in.Role == string(game.RoleBuyer) {
		role = game.RoleBuyer
	}
	c, eval, err := s.sandbox.SubmitOffer(r.Context(), game.Proposal{
		Commodity:     in.Commodity,
		Quantity:      in.Quantity,
		ContractPrice: in.ContractPrice,
	}, role, s.playerLevel(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contract": c, "evaluation": eval})
}

func (s *Server) handleContract(w http.ResponseWriter, r *http.Request) {
	c, ok, err := s.sandbox.Store.Contract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrContractNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	if err := s.sandbox.Store.DeleteContract(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	c, eval, err := s.sandbox.ReEvaluate(r.Context(), chi.URLParam(r, "id"), s.playerLevel(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contract": c, "evaluation": eval})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UseCounterPrice bool `json:"use_counter_price"`
	}
	// Body is optional on accept.
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	c, ok, err := s.sandbox.Store.Contract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrContractNotFound.Error())
		return
	}
	if c.Status != game.StatusPending {
		writeError(w, http.StatusConflict, "only pending contracts can be accepted")
		return
	}
	if in.UseCounterPrice && c.CounterOfferPrice > 0 {
		c.ContractPrice = c.CounterOfferPrice
	}
	c, err = s.sandbox.AcceptAIContract(r.Context(), c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	c, ok, err := s.sandbox.Store.Contract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, game.ErrContractNotFound.Error())
		return
	}
	if c.Status != game.StatusPending {
		writeError(w, http.StatusConflict, "only pending contracts can be rejected")
		return
	}
	c.Status = game.StatusRejected
	if err := s.sandbox.Store.SaveContract(r.Context(), &c); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	out, err := s.sandbox.CompleteContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAIContracts(w http.ResponseWriter, r *http.Request) {
	out, err := s.sandbox.Store.PendingAIContracts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": out})
}

func (s *Server) handleGenerateAIContracts(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Count int `json:"count"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if in.Count <= 0 {
		in.Count = 8
	}
	if in.Count > 50 {
		in.Count = 50
	}
	drafts := s.sandbox.Bot.GeneratePool(s.playerLevel(r), in.Count)
	saved := make([]game.Contract, 0, len(drafts))
	for _, d := range drafts {
		if err := s.sandbox.Store.SaveContract(r.Context(), &d); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		saved = append(saved, d)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contracts": saved})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.sandbox.Store.ResetAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// playerLevel reads the current player's level, defaulting to the easiest
// tier when no player exists yet.
func (s *Server) playerLevel(r *http.Request) int {
	p, ok, err := s.sandbox.Store.Player(r.Context())
	if err != nil || !ok {
		return 1
	}
	return p.Level
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrContractNotFound), errors.Is(err, game.ErrCommodityNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrNoPlayer):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrAlreadyCompleted), errors.Is(err, game.ErrNotAccepted), errors.Is(err, game.ErrNotPending):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
