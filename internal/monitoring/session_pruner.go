package monitoring

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionStore is the slice of the user service the pruner needs.
type SessionStore interface {
	PruneExpiredSessions(now time.Time) (int64, error)
}

// SessionPruner periodically deletes expired sessions so that clients that
// never log out do not grow the session table without bound. Expired tokens
// already fail verification; pruning only reclaims the rows.
type SessionPruner struct {
	store    SessionStore
	schedule cron.Schedule
	done     chan bool
}

// NewSessionPruner creates a pruner from a standard cron expression.
func NewSessionPruner(store SessionStore, cronExpr string) (*SessionPruner, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", cronExpr, err)
	}
	return &SessionPruner{
		store:    store,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the pruning loop. It blocks until Stop is called.
func (p *SessionPruner) Run() {
	log.Info().Msg("Starting session pruner")

	// Run once immediately on start
	p.prune()

	for {
		timer := time.NewTimer(time.Until(p.schedule.Next(time.Now())))
		select {
		case <-p.done:
			timer.Stop()
			log.Info().Msg("Stopping session pruner")
			return
		case <-timer.C:
			p.prune()
		}
	}
}

// Stop halts the pruning loop.
func (p *SessionPruner) Stop() {
	p.done <- true
}

func (p *SessionPruner) prune() {
	removed, err := p.store.PruneExpiredSessions(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune expired sessions")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Pruned expired sessions")
	}
}
