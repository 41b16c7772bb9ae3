package workers

import (
	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the background workers enabled by the
// configuration. With a zero JobTTL no janitor is started and jobs
// live until fulfilled.
func NewWorkers(services *service.Services, cfg config.Workers, logger *logger.Logger) *Workers {
	w := &Workers{}

	if cfg.JobTTL > 0 && cfg.JanitorInterval > 0 {
		w.workers = append(w.workers, newJobJanitor(services.JobService, cfg, logger))
	}

	return w
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
