package cache

import (
	"github.com/robfig/cron/v3"

	"warehouse-catalog/pkg/logger"
)

// Purgeable - ячейка или набор ячеек, умеющие чистить истекшие записи
type Purgeable interface {
	PurgeExpired()
}

// Janitor периодически чистит истекшие ячейки кеша по расписанию cron.
// Чистка - только гигиена: истекшая ячейка и без нее читается как пустая.
type Janitor struct {
	cron    *cron.Cron
	targets []Purgeable
}

// NewJanitor создает janitor для перечисленных кешей
func NewJanitor(targets ...Purgeable) *Janitor {
	return &Janitor{
		cron:    cron.New(),
		targets: targets,
	}
}

// Start запускает чистку по расписанию (например "@every 5m")
func (j *Janitor) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		for _, target := range j.targets {
			target.PurgeExpired()
		}
		logger.Debug().Int("targets", len(j.targets)).Msg("Cache janitor pass completed")
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Cache janitor started")
	return nil
}

// Stop останавливает janitor и дожидается завершения текущего прохода
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cache janitor stopped")
}
