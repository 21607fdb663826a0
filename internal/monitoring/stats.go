package monitoring

import (
	"context"
	"fmt"

	"github.com/isdelr/accounts-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// UserCounter reports how many users are stored.
type UserCounter interface {
	CountUsers(ctx context.Context) (int, error)
}

// StatsReporter periodically logs service statistics and records them as events.
type StatsReporter struct {
	users  UserCounter
	events services.EventServiceProvider
	proc   *ProcessInfo
	cron   *cron.Cron
}

// NewStatsReporter schedules a report on the given cron schedule
// (standard five-field syntax or descriptors such as "@every 1m").
func NewStatsReporter(schedule string, users UserCounter, events services.EventServiceProvider, proc *ProcessInfo) (*StatsReporter, error) {
	sr := &StatsReporter{
		users:  users,
		events: events,
		proc:   proc,
		cron:   cron.New(),
	}
	if _, err := sr.cron.AddFunc(schedule, sr.Report); err != nil {
		return nil, fmt.Errorf("invalid stats schedule %q: %w", schedule, err)
	}
	return sr, nil
}

// Start runs the schedule in the background.
func (sr *StatsReporter) Start() {
	log.Info().Msg("Starting background stats reporter...")
	sr.cron.Start()
}

// Stop halts the schedule and waits for a running report to finish.
func (sr *StatsReporter) Stop() {
	<-sr.cron.Stop().Done()
	log.Info().Msg("Stopped background stats reporter.")
}

// Report collects and records one round of statistics.
func (sr *StatsReporter) Report() {
	count, err := sr.users.CountUsers(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("StatsReporter: Failed to count users")
		return
	}

	var rss uint64
	if sr.proc != nil {
		rss = sr.proc.MemoryRSS()
	}

	log.Info().Int("users", count).Uint64("rss_bytes", rss).Msg("Service stats")

	if sr.events != nil {
		msg := fmt.Sprintf("%d users stored, %d bytes resident.", count, rss)
		if err := sr.events.CreateEvent("system.stats", "info", msg, nil); err != nil {
			log.Warn().Err(err).Msg("StatsReporter: Failed to record stats event")
		}
	}
}
