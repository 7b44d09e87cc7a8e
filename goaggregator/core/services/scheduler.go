package services

import (
	"github.com/mrwonko/cron"
)

// Scheduler re-runs the available-funds reconciliation and the payout
// confirmation pass on a cron schedule, so drift between the token balance and
// the recorded ledger self-heals and stuck transfers get followed up. Vesting
// stays lazy; nothing here touches it.
type Scheduler struct {
	Cron       *cron.Cron
	Aggregator *Aggregator
	schedule   string
}

func NewScheduler(schedule string, aggregator *Aggregator) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(),
		Aggregator: aggregator,
		schedule:   schedule,
	}
}

func (s *Scheduler) Start() error {
	if err := s.Cron.AddFunc(s.schedule, s.Aggregator.RefreshFunds); err != nil {
		return err
	}
	if err := s.Cron.AddFunc(s.schedule, s.Aggregator.ConfirmPayouts); err != nil {
		return err
	}
	s.Cron.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	s.Cron.Stop()
	return nil
}
