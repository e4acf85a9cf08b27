package services

import (
	"fmt"

	"testquest/models"
)

// The core signals typed failures; handlers own the HTTP status mapping.
// None of these are retryable: they are synchronous validation failures and
// leave no state mutated.

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a dangling reference.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError reports a caller without ownership or role for the action.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// AlreadyProcessedError reports an action against a record whose status no
// longer permits it.
type AlreadyProcessedError struct {
	Resource string
	ID       string
	Status   string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s %s already processed (status %s)", e.Resource, e.ID, e.Status)
}

// InsufficientBountyError means a settlement or reconciliation would overdraw
// the project's remaining bounty. It carries the pool state so the caller can
// react.
type InsufficientBountyError struct {
	RemainingBounty int64
	Requested       int64
	AlreadyPaid     int64
	NewTotalReward  int64
}

func (e *InsufficientBountyError) Error() string {
	return fmt.Sprintf("insufficient remaining bounty: have %d, need %d", e.RemainingBounty, e.Requested)
}

// CannotReduceRewardError: reconciliation may never claw back credits already
// paid out.
type CannotReduceRewardError struct {
	AlreadyPaid     int64
	NewRewardAmount int64
}

func (e *CannotReduceRewardError) Error() string {
	return fmt.Sprintf("cannot reduce reward: tester already paid %d, new amount would be %d", e.AlreadyPaid, e.NewRewardAmount)
}

// AlreadyCorrectAmountError: the override requests exactly what was already
// paid. Reported as an error rather than a silent no-op.
type AlreadyCorrectAmountError struct {
	AlreadyPaid int64
}

func (e *AlreadyCorrectAmountError) Error() string {
	return fmt.Sprintf("tester already paid the correct amount (%d) for this severity", e.AlreadyPaid)
}

func invalidTransition(report *models.BugReport) *AlreadyProcessedError {
	return &AlreadyProcessedError{Resource: "bug report", ID: report.ID, Status: string(report.Status)}
}
