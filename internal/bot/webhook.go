package bot

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// secretHeader is the header Telegram echoes the webhook secret in.
const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Server exposes the Telegram webhook over HTTP.
type Server struct {
	handler *Handler
	secret  string
}

// NewServer wraps a Handler in the webhook transport.
func NewServer(handler *Handler, secret string) *Server {
	return &Server{handler: handler, secret: secret}
}

// Router builds the chi router: health check plus the webhook endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", secretHeader},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Post("/webhook/telegram", s.handleWebhook)

	return r
}

func (s *Server) handleWebhook(w http.ResponseWriter, req *http.Request) {
	if s.secret != "" && req.Header.Get(secretHeader) != s.secret {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}

	var update Update
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		http.Error(w, `{"error":"invalid update"}`, http.StatusBadRequest)
		return
	}

	// Telegram retries non-200 responses, so acknowledge immediately and
	// process in the background, detached from the request lifetime.
	if update.Message != nil {
		ctx := context.WithoutCancel(req.Context())
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					zap.L().Error("bot: webhook handler panic", zap.Any("panic", rec))
				}
			}()
			s.handler.HandleMessage(ctx, update.Message)
		}()
	}

	w.WriteHeader(http.StatusOK)
}
