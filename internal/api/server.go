// Package api is the thin HTTP glue in front of the engine. The
// engine itself never fabricates replies; the fallback for unmatched
// queries lives here, on the caller side of the boundary.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/chat-brain/backend/internal/brain"
	"github.com/chat-brain/backend/internal/knowledge"
	"github.com/chat-brain/backend/internal/sanitize"
)

// FallbackResponse is returned to chat callers when nothing in the
// corpus clears the similarity threshold.
const FallbackResponse = "Интересный вопрос! Я ещё учусь и пока не знаю точный ответ. Можете научить меня?"

// Server exposes the engine over HTTP.
type Server struct {
	Engine  *brain.Engine
	Logger  *logrus.Entry
	Handler http.Handler

	started time.Time
}

// NewServer wires routes and CORS around the engine.
func NewServer(engine *brain.Engine, logger *logrus.Entry) *Server {
	s := &Server{
		Engine:  engine,
		Logger:  logger,
		started: time.Now(),
	}

	router := mux.NewRouter()
	apiV1 := router.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	apiV1.HandleFunc("/teach", s.handleTeach).Methods(http.MethodPost)
	apiV1.HandleFunc("/auto-learn", s.handleAutoLearn).Methods(http.MethodPost)
	apiV1.HandleFunc("/knowledge", s.handleKnowledge).Methods(http.MethodPost)
	apiV1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	})
	s.Handler = c.Handler(router)

	return s
}

// Start blocks serving HTTP on the given address.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	s.Logger.Infof("Starting API server on %s", addr)
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return server.ListenAndServe()
}

// Requests and responses

type ErrorResponse struct {
	Error string `json:"error"`
}

type ChatRequest struct {
	Scope   string `json:"bot_id,omitempty"`
	Message string `json:"message"`
}

type ChatResponse struct {
	Content         string  `json:"content"`
	Matched         bool    `json:"matched"`
	Score           float64 `json:"score"`
	MatchedQuestion string  `json:"matched_question,omitempty"`
}

type TeachRequest struct {
	Scope    string `json:"bot_id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type TeachResponse struct {
	Content string `json:"content"`
	Learned bool   `json:"learned"`
}

type AutoLearnRequest struct {
	Scope string `json:"bot_id,omitempty"`
}

type AutoLearnResponse struct {
	Learned int `json:"learned"`
}

type KnowledgeRequest struct {
	Scope   string            `json:"bot_id,omitempty"`
	Entries []knowledge.Entry `json:"entries"`
}

type KnowledgeResponse struct {
	Added int `json:"added"`
}

type StatusResponse struct {
	Pairs  int    `json:"pairs"`
	Uptime string `json:"uptime"`
}

// Handlers

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	message := sanitize.Clean(req.Message)
	if message == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "message required"})
		return
	}

	result := s.Engine.Respond(r.Context(), req.Scope, message)

	resp := ChatResponse{
		Content:         result.Answer,
		Matched:         result.Matched(),
		Score:           result.Score,
		MatchedQuestion: result.MatchedQuestion,
	}
	if !result.Matched() {
		resp.Content = FallbackResponse
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleTeach(w http.ResponseWriter, r *http.Request) {
	var req TeachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	question := sanitize.Clean(req.Question)
	answer := sanitize.Clean(req.Answer)

	err := s.Engine.Teach(r.Context(), req.Scope, question, answer)
	if errors.Is(err, brain.ErrEmptyInput) {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "question and answer required"})
		return
	}
	if err != nil {
		s.Logger.WithError(err).Error("Teach failed")
		jsonResponse(w, http.StatusInternalServerError, TeachResponse{Learned: false})
		return
	}

	jsonResponse(w, http.StatusOK, TeachResponse{
		Content: "Обучение успешно! Запомнил новый пример.",
		Learned: true,
	})
}

func (s *Server) handleAutoLearn(w http.ResponseWriter, r *http.Request) {
	var req AutoLearnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	learned := s.Engine.AutoLearn(r.Context(), req.Scope)
	jsonResponse(w, http.StatusOK, AutoLearnResponse{Learned: learned})
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	for i := range req.Entries {
		req.Entries[i].Question = sanitize.Clean(req.Entries[i].Question)
		req.Entries[i].Answer = sanitize.Clean(req.Entries[i].Answer)
	}

	added, err := s.Engine.BulkUpdate(r.Context(), req.Scope, req.Entries)
	if errors.Is(err, brain.ErrBatchTooLarge) {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.Logger.WithError(err).Error("Knowledge update failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: "knowledge update failed"})
		return
	}

	jsonResponse(w, http.StatusOK, KnowledgeResponse{Added: added})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	pairs, err := s.Engine.CorpusSize(r.Context())
	if err != nil {
		s.Logger.WithError(err).Warn("Failed to count pairs")
	}
	jsonResponse(w, http.StatusOK, StatusResponse{
		Pairs:  pairs,
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

func jsonResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
