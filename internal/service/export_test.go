package service

import "time"

// SetBeforeStatusUpdate installs a hook that runs after a workflow action has read
// the current status and before the conditional update.
func SetBeforeStatusUpdate(s *TestCaseService, hook func()) {
	s.beforeStatusUpdate = hook
}

// ValidateChecklistInput runs checklist input validation against the given clock.
func ValidateChecklistInput(in CreateChecklistInput, now time.Time) error {
	return in.validate(now)
}
