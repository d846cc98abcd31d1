package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/session"
)

type assessRequest struct {
	Answers  []string `json:"answers"`
	Language string   `json:"language"`
}

type contextRequest struct {
	Answers  []string `json:"answers"`
	Language string   `json:"language"`
	TopK     int      `json:"top_k"`
}

type contextResponse struct {
	Context   string   `json:"context"`
	FollowUps []string `json:"follow_ups"`
	Matches   int      `json:"matches"`
}

type createSessionRequest struct {
	Language string `json:"language"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type questionResponse struct {
	Question string `json:"question,omitempty"`
	Done     bool   `json:"done"`
}

type healthResponse struct {
	Status       string `json:"status"`
	RulesVersion string `json:"rules_version"`
	CorpusItems  int    `json:"corpus_items"`
	LLMProvider  string `json:"llm_provider"`
	Sessions     int    `json:"sessions"`
	Uptime       string `json:"uptime"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if !s.decode(w, r, &req) {
		return
	}
	out := s.service.Assess(r.Context(), screening.Input{
		Answers:  req.Answers,
		Language: knowledge.ParseLanguage(req.Language),
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.TopK < 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("top_k must not be negative"))
		return
	}
	lang := knowledge.ParseLanguage(req.Language)
	ret := s.service.Retriever()

	matches := ret.Search(req.Answers, lang, req.TopK)
	s.metrics.RetrievalResult(len(matches))
	writeJSON(w, http.StatusOK, contextResponse{
		Context:   ret.RelevantContext(req.Answers, lang, req.TopK),
		FollowUps: ret.FollowUps(req.Answers, lang, 0),
		Matches:   len(matches),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}
	sess := s.sessions.Create(knowledge.ParseLanguage(req.Language))
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		s.sessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPatient(w http.ResponseWriter, r *http.Request) {
	var p session.Patient
	if !s.decode(w, r, &p) {
		return
	}
	sess, err := s.sessions.SetPatient(r.PathValue("id"), p)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	q, done, err := s.sessions.NextQuestion(r.Context(), r.PathValue("id"), s.service)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{Question: q, Done: done})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.sessions.Answer(r.PathValue("id"), req.Answer)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionAssessment(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.sessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.Assess(r.Context(), sess.Input()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	provider := s.provider
	if provider == "" {
		provider = "none"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		RulesVersion: s.service.Rules().Version(),
		CorpusItems:  s.service.Retriever().Corpus().Len(),
		LLMProvider:  provider,
		Sessions:     s.sessions.Len(),
		Uptime:       time.Since(s.startTime).Round(time.Second).String(),
	})
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// decodeOptional is decode for endpoints whose body may be omitted. An empty
// body leaves v untouched whether or not the client sent a Content-Length.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, session.ErrInvalidPatient), errors.Is(err, session.ErrEmptyAnswer):
		s.writeError(w, http.StatusBadRequest, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("HTTP error response sent")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
