package parameter

// Scheduler priority tiers, executed in ascending order each tick
// Ties within a tier run in registration order
const (
	PriorityCritical = 0
	PriorityHigh     = 1
	PriorityMedium   = 2
	PriorityLow      = 3
	PriorityIdle     = 4

	// PriorityTierCount is the number of tiers the scheduler iterates
	PriorityTierCount = 5
)
