package model

// FlowState is the ephemeral state of one purchase attempt. It is owned
// exclusively by a single flow controller, reset on every new attempt, and
// never persisted.
type FlowState struct {
	IsLoading        bool
	ProcessingPlanID string
	Error            string
	RetryCount       int
	IsRetrying       bool
}
