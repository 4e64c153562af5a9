package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"videostudio/internal/autosave"
	"videostudio/internal/durable"
	"videostudio/internal/render"
)

// Manager hands out one Session per project id and owns their autosave
// loops. Backends are stateless clients, so all sessions share one.
type Manager struct {
	store    durable.Store
	backend  render.Backend
	interval time.Duration
	log      *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(store durable.Store, backend render.Backend, autosaveInterval time.Duration, log *logrus.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:    store,
		backend:  backend,
		interval: autosaveInterval,
		sessions: make(map[string]*Session),
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Get returns the session for a project, creating it on first use. Creation
// starts the project's autosave loop.
func (m *Manager) Get(projectID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[projectID]; ok {
		return s
	}

	saver := autosave.NewSaver(m.store, projectID, m.interval, m.log)
	orch := render.NewOrchestrator(m.backend, m.log)
	s := newSession(projectID, saver, orch)
	m.sessions[projectID] = s

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		saver.Run(m.ctx, s.Snapshot)
	}()

	m.log.WithField("project_id", projectID).Info("Editor session created")
	return s
}

// Peek returns an existing session without creating one.
func (m *Manager) Peek(projectID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[projectID]
	return s, ok
}

// Close stops all autosave loops and waits for them to drain.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
