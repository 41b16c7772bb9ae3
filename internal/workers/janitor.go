package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/service"
)

// jobJanitor periodically retires encrypt jobs that outlived their TTL.
// Expired jobs would otherwise linger forever when every qualified
// encoder has gone offline.
type jobJanitor struct {
	jobService service.JobService
	ttl        time.Duration
	interval   time.Duration
	logger     *logger.Logger
}

func newJobJanitor(jobService service.JobService, cfg config.Workers, logger *logger.Logger) *jobJanitor {
	return &jobJanitor{
		jobService: jobService,
		ttl:        cfg.JobTTL,
		interval:   cfg.JanitorInterval,
		logger:     logger,
	}
}

// Run starts the sweep loop in a background goroutine and returns
// immediately.
func (j *jobJanitor) Run() {
	go j.loop()
}

func (j *jobJanitor) loop() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for range ticker.C {
		j.sweep()
	}
}

func (j *jobJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	purged, err := j.jobService.PurgeExpired(ctx, j.ttl)
	if err != nil {
		j.logger.Err(err).Msg("job janitor sweep failed")
		return
	}

	if purged > 0 {
		j.logger.Info().Int("purged", purged).Msg("expired encrypt jobs retired")
	}
}
