// Package api exposes the assistant over HTTP. Transport only; every
// decision lives in the orchestrator and the store.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/todo-assistant/internal/models"
	"github.com/example/todo-assistant/internal/orchestrator"
	"github.com/example/todo-assistant/internal/store"
)

type Server struct {
	orch  *orchestrator.Orchestrator
	tasks store.Store
	convs store.ConversationStore
	log   *zap.Logger
}

func NewServer(orch *orchestrator.Orchestrator, tasks store.Store, convs store.ConversationStore, log *zap.Logger) *Server {
	return &Server{orch: orch, tasks: tasks, convs: convs, log: log}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/conversations", s.handleConversations)
	mux.HandleFunc("/conversations/", s.handleConversationMessages)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		UserID         string `json:"user_id"`
		Message        string `json:"message"`
		ConversationID string `json:"conversation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Message == "" {
		http.Error(w, "user_id and message are required", http.StatusBadRequest)
		return
	}
	result := s.orch.ProcessTurn(r.Context(), req.UserID, req.Message, req.ConversationID)
	respondJSON(w, result)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		f := store.Filters{
			Status:   r.URL.Query().Get("status"),
			Priority: models.Priority(r.URL.Query().Get("priority")),
			Tag:      r.URL.Query().Get("tag"),
		}
		tasks, err := s.tasks.List(r.Context(), userID, f, store.Sort{}, store.Page{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, tasks)
	case http.MethodPost:
		var req struct {
			UserID string `json:"user_id"`
			models.TaskFields
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		task, err := s.tasks.Create(r.Context(), req.UserID, req.TaskFields)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, store.ErrEmptyTitle) || errors.Is(err, store.ErrTitleTooLong) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusCreated)
		respondJSON(w, task)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	convs, err := s.convs.ListConversations(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, convs)
}

func (s *Server) handleConversationMessages(w http.ResponseWriter, r *http.Request) {
	// path: /conversations/{id}/messages
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := r.URL.Path[len("/conversations/"):]
	const suffix = "/messages"
	if len(rest) <= len(suffix) || rest[len(rest)-len(suffix):] != suffix {
		http.NotFound(w, r)
		return
	}
	id := rest[:len(rest)-len(suffix)]
	msgs, err := s.convs.ListMessages(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, msgs)
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
