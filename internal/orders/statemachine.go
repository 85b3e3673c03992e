package orders

import (
	"fmt"

	"mesob/internal/models"
)

// StatusPolicy names whether a station may move backward (for example
// Ready back to In Progress after an operator misclick).
type StatusPolicy string

const (
	PolicyForwardOnly StatusPolicy = "forward_only"
	PolicyReversible  StatusPolicy = "reversible"
)

// ParsePolicy resolves a config string to a status policy.
func ParsePolicy(s string) (StatusPolicy, error) {
	switch StatusPolicy(s) {
	case PolicyForwardOnly, PolicyReversible:
		return StatusPolicy(s), nil
	}
	return "", fmt.Errorf("unknown status policy %q", s)
}

var stationStatusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusInProgress: 1,
	models.OrderStatusReady:      2,
}

// ValidStationStatus reports whether s belongs to the per-station
// status domain. Completed and Voided are overall-only and never valid
// for a station.
func ValidStationStatus(s models.OrderStatus) bool {
	_, ok := stationStatusRank[s]
	return ok
}

// Allow decides whether a station may move from one status to another
// under this policy.
func (p StatusPolicy) Allow(from, to models.OrderStatus) error {
	if p == PolicyReversible {
		return nil
	}
	if stationStatusRank[to] < stationStatusRank[from] {
		return &ValidationError{Msg: fmt.Sprintf(
			"station cannot move backward from %q to %q", from, to)}
	}
	return nil
}

// AggregateStatus derives the overall order status from the full set
// of station entries. The rule is total: all Ready means Ready, any
// In Progress means In Progress, otherwise Pending. It must always be
// evaluated against the post-mutation station rows.
func AggregateStatus(statuses []models.StationStatus) models.OrderStatus {
	allReady := len(statuses) > 0
	anyInProgress := false
	for _, ss := range statuses {
		if ss.Status != models.OrderStatusReady {
			allReady = false
		}
		if ss.Status == models.OrderStatusInProgress {
			anyInProgress = true
		}
	}
	switch {
	case allReady:
		return models.OrderStatusReady
	case anyInProgress:
		return models.OrderStatusInProgress
	}
	return models.OrderStatusPending
}
