package tasks

import "time"

// Task Types
const (
	// Offline maintenance pass that merges split version groups.
	TaskTypeVersionRepair = "maintenance:version_repair"
)

// Task Queues
const (
	QueueDefault = "default" // For regular tasks
	QueueLow     = "low"     // For background maintenance
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryDefault = 3
)
