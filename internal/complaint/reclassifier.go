package complaint

import (
	"context"
	"fmt"
	"sync"

	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReclassifyPending classifies complaints that were stored but whose
// verification result was never written. It returns how many were
// classified; failures on single complaints are logged and skipped.
func (s *Service) ReclassifyPending(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-config.PendingVerificationGrace)
	pending, err := s.Storage.ListPendingVerification(ctx, cutoff, config.ReclassifyBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unclassified complaints: %w", err)
	}

	done := 0
	for i := range pending {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		complaint := &pending[i]
		outcome, classified := s.classify(ctx, complaint)
		if !classified {
			continue
		}
		done++
		if outcome.IsSuspicious() {
			s.notifySuspicious(complaint)
		}
	}
	return done, nil
}

// Reclassifier runs ReclassifyPending on a cron schedule.
type Reclassifier struct {
	cron    *cron.Cron
	service *Service
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
}

// NewReclassifier validates schedule (standard cron spec or "@every 5m").
func NewReclassifier(service *Service, schedule string) (*Reclassifier, error) {
	r := &Reclassifier{
		cron:    cron.New(),
		service: service,
		logger:  service.Logger.Named("reclassifier"),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid reclassify schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Reclassifier) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.logger.Info("starting reclassifier")
	r.cron.Start()
}

// Stop waits for a running sweep to finish.
func (r *Reclassifier) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
}

func (r *Reclassifier) run() {
	n, err := r.service.ReclassifyPending(context.Background())
	if err != nil {
		r.logger.Error("reclassify sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("reclassified pending complaints", zap.Int("count", n))
	}
}
