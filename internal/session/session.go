package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/metrics"
	"github.com/abhisek/mamacheck/internal/screening"
)

// Defaults for Config.
const (
	DefaultTTL          = 2 * time.Hour
	DefaultMaxQuestions = 10
)

// Config bounds session lifetime and length.
type Config struct {
	TTL          time.Duration `mapstructure:"ttl"`
	MaxQuestions int           `mapstructure:"max_questions"`
}

// Questioner supplies the next screening questions. *screening.Service
// implements it.
type Questioner interface {
	NextQuestions(ctx context.Context, in screening.Input) screening.Questions
}

// Manager holds sessions in memory. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
}

// NewManager creates a Manager. Zero config values take the defaults.
func NewManager(cfg Config, m *metrics.Metrics, logger logrus.FieldLogger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = DefaultMaxQuestions
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		now:      time.Now,
		metrics:  m,
		logger:   logger,
	}
}

// Create starts a session in the intake phase.
func (m *Manager) Create(lang knowledge.Language) Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Language:  knowledge.ParseLanguage(string(lang)),
		Phase:     PhaseIntake,
		Asked:     []string{},
		Answers:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
	m.logger.WithFields(logrus.Fields{"session_id": s.ID, "language": s.Language}).Info("session created")
	return s.clone()
}

// Get returns a copy of the session.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	return s.clone(), nil
}

// SetPatient validates and stores intake info, moving the session to the
// questions phase.
func (m *Manager) SetPatient(id string, p Patient) (Session, error) {
	if err := p.Validate(); err != nil {
		return Session{}, err
	}
	p.Name = strings.TrimSpace(p.Name)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	s.Patient = &p
	if s.Phase == PhaseIntake {
		s.Phase = PhaseQuestions
	}
	s.UpdatedAt = m.now()
	return s.clone(), nil
}

// NextQuestion returns the pending question, or asks q for a new one. done
// is true once MaxQuestions questions were served or nothing is left to ask.
// The questioner runs without the lock held.
func (m *Manager) NextQuestion(ctx context.Context, id string, q Questioner) (question string, done bool, err error) {
	m.mu.Lock()
	s, err := m.lookup(id)
	if err != nil {
		m.mu.Unlock()
		return "", false, err
	}
	if s.Pending != "" {
		pending := s.Pending
		m.mu.Unlock()
		return pending, false, nil
	}
	if s.Phase == PhaseComplete || len(s.Asked) >= m.cfg.MaxQuestions {
		s.Phase = PhaseComplete
		m.mu.Unlock()
		return "", true, nil
	}
	in := s.Input()
	m.mu.Unlock()

	batch := q.NextQuestions(ctx, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	s, err = m.lookup(id)
	if err != nil {
		return "", false, err
	}
	// A concurrent caller may have served a question meanwhile.
	if s.Pending != "" {
		return s.Pending, false, nil
	}
	if len(batch.Questions) == 0 {
		s.Phase = PhaseComplete
		return "", true, nil
	}

	s.Pending = batch.Questions[0]
	s.Asked = append(s.Asked, s.Pending)
	if s.Phase == PhaseIntake {
		s.Phase = PhaseQuestions
	}
	s.UpdatedAt = m.now()

	m.logger.WithFields(logrus.Fields{
		"session_id": id,
		"source":     batch.Source,
		"asked":      len(s.Asked),
	}).Debug("question served")
	return s.Pending, false, nil
}

// Answer records an answer and clears the pending question.
func (m *Manager) Answer(id, answer string) (Session, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Session{}, ErrEmptyAnswer
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	s.Answers = append(s.Answers, answer)
	s.Pending = ""
	if len(s.Asked) >= m.cfg.MaxQuestions {
		s.Phase = PhaseComplete
	}
	s.UpdatedAt = m.now()
	return s.clone(), nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	if _, err := m.lookup(id); err != nil {
		m.mu.Unlock()
		return err
	}
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
	m.logger.WithField("session_id", id).Info("session deleted")
	return nil
}

// MaxQuestions is the per-session question cap.
func (m *Manager) MaxQuestions() int { return m.cfg.MaxQuestions }

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.TTL)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if removed > 0 {
		m.metrics.SetSessions(n)
		m.logger.WithField("removed", removed).Info("expired sessions swept")
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// lookup must be called with mu held. Expired sessions are reported as not
// found even before the sweeper runs.
func (m *Manager) lookup(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok || s.UpdatedAt.Before(m.now().Add(-m.cfg.TTL)) {
		return nil, ErrNotFound
	}
	return s, nil
}
