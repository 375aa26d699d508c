package timescheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tokenstd/nip13d/internal/core/ports"
)

type service struct {
	scheduler *gocron.Scheduler
}

func NewScheduler() ports.SchedulerService {
	svc := gocron.NewScheduler(time.UTC)
	return &service{svc}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

func (s *service) ScheduleTaskRecurring(interval time.Duration, task func()) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if task == nil {
		return fmt.Errorf("missing task")
	}

	_, err := s.scheduler.Every(interval).Do(task)
	return err
}

func (s *service) ScheduleTaskOnce(delay time.Duration, task func()) error {
	if delay <= 0 {
		return fmt.Errorf("delay must be positive")
	}
	if task == nil {
		return fmt.Errorf("missing task")
	}

	_, err := s.scheduler.Every(delay).WaitForSchedule().LimitRunsTo(1).Do(task)
	return err
}
