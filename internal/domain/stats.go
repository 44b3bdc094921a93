package domain

// TaskStatistics is derived from the live task collection on every request
// and is never persisted, so it cannot drift from the collection itself.
type TaskStatistics struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	PendingTasks   int `json:"pendingTasks"`
	// CompletionRate is a rounded percentage; 0 when there are no tasks.
	CompletionRate int `json:"completionRate"`
}
