package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/example/storefront-console/internal/domain"
	"github.com/example/storefront-console/internal/usecase"
	"github.com/gorilla/mux"
)

// Server — HTTP-поверхность консоли оператора: список витрин,
// активная витрина, переключение и websocket предъявлений.
type Server struct {
	Router *mux.Router

	// SessionCtx ограничивает ресурсы сессии (подписку и циклы
	// обработки заказов), переживающие отдельный запрос.
	SessionCtx context.Context

	Stores   domain.StorefrontCache
	Repo     domain.StorefrontRepository
	Resolver *usecase.ActiveStoreResolver
	Manager  *usecase.SubscriptionManager
	Alerts   *AlertPresenter
}

func NewServer(sessionCtx context.Context, stores domain.StorefrontCache, repo domain.StorefrontRepository,
	resolver *usecase.ActiveStoreResolver, manager *usecase.SubscriptionManager, alerts *AlertPresenter) *Server {
	s := &Server{
		Router:     mux.NewRouter(),
		SessionCtx: sessionCtx,
		Stores:     stores,
		Repo:       repo,
		Resolver:   resolver,
		Manager:    manager,
		Alerts:     alerts,
	}
	s.Router.HandleFunc("/api/storefronts", s.handleList).Methods(http.MethodGet)
	s.Router.HandleFunc("/api/storefronts", s.handleCreate).Methods(http.MethodPost)
	s.Router.HandleFunc("/api/storefront/active", s.handleActive).Methods(http.MethodGet)
	s.Router.HandleFunc("/api/storefront/active", s.handleSwitch).Methods(http.MethodPut)
	s.Router.HandleFunc("/ws/alerts", s.Alerts.HandleWS)
	return s
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Stores.All())
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	sf, ok, err := s.Resolver.Resolve(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "no storefront", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, sf)
}

// handleSwitch переключает активную витрину: остановка подписки,
// запись выбора, запуск подписки на новую витрину — строго в этом
// порядке.
func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid data", http.StatusBadRequest)
		return
	}
	sf, ok := s.Stores.ByID(req.ID)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	s.Manager.Stop()
	if err := s.Resolver.SetActive(r.Context(), sf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.Manager.Start(s.SessionCtx); err != nil {
		// витрина переключена, но событий не будет до следующего
		// запуска подписки
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, sf)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var sf domain.Storefront
	if err := json.Unmarshal(raw, &sf); err != nil || sf.ID == "" || sf.PublicID == "" {
		http.Error(w, "invalid data", http.StatusBadRequest)
		return
	}
	if err := s.Repo.Upsert(r.Context(), sf.ID, raw); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Stores.Put(sf)
	writeJSON(w, http.StatusCreated, sf)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
