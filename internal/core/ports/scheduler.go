package ports

import "time"

// SchedulerService runs background tasks on a fixed cadence. The snapshot
// watcher uses it to keep tracked-token state fresh.
type SchedulerService interface {
	Start()
	Stop()
	// ScheduleTaskRecurring runs task every interval until Stop.
	ScheduleTaskRecurring(interval time.Duration, task func()) error
	// ScheduleTaskOnce runs task once after delay.
	ScheduleTaskOnce(delay time.Duration, task func()) error
}
