package assignment

import "errors"

// ErrNoEligibleStaff is returned when the candidate set is empty.
var ErrNoEligibleStaff = errors.New("no eligible staff for assignment")

// Policy names a selection policy for metrics and error details.
type Policy string

const (
	PolicyRoundRobin  Policy = "round_robin"
	PolicyLeastLoaded Policy = "least_loaded"
	PolicyExplicit    Policy = "explicit"
)

// NextAssignee picks the staff member after lastAssignedID in a fixed rotation.
//
// The algorithm:
//  1. An empty activeStaffIDs fails with ErrNoEligibleStaff
//  2. An empty lastAssignedID selects index 0
//  3. Otherwise the choice is (indexOf(lastAssignedID) + 1) mod len(activeStaffIDs)
//
// A cursor that is no longer in the set has index -1, so the rotation restarts
// at the first element instead of failing.
//
// Parameters:
//   - activeStaffIDs: eligible staff in the order storage returned them
//   - lastAssignedID: persisted rotation cursor, empty when never set
//
// Returns:
//   - string: chosen staff ID
//   - error: ErrNoEligibleStaff when the set is empty
//
// Example:
//
//	next, err := assignment.NextAssignee([]string{"a", "b", "c"}, "c")
//	// next == "a"
func NextAssignee(activeStaffIDs []string, lastAssignedID string) (string, error) {
	if len(activeStaffIDs) == 0 {
		return "", ErrNoEligibleStaff
	}
	if lastAssignedID == "" {
		return activeStaffIDs[0], nil
	}

	found := -1
	for i, id := range activeStaffIDs {
		if id == lastAssignedID {
			found = i
			break
		}
	}

	return activeStaffIDs[(found+1)%len(activeStaffIDs)], nil
}

// LeastLoaded picks the candidate with the fewest pending tasks.
//
// Ties go to the candidate that appears first in candidateIDs. A candidate
// missing from pendingCounts is treated as having no pending work.
//
// Parameters:
//   - candidateIDs: eligible staff in the order storage returned them
//   - pendingCounts: pending task count keyed by staff ID
//
// Returns:
//   - string: chosen staff ID
//   - error: ErrNoEligibleStaff when there are no candidates
func LeastLoaded(candidateIDs []string, pendingCounts map[string]int) (string, error) {
	if len(candidateIDs) == 0 {
		return "", ErrNoEligibleStaff
	}

	best := candidateIDs[0]
	bestCount := pendingCounts[best]
	for _, id := range candidateIDs[1:] {
		if count := pendingCounts[id]; count < bestCount {
			best, bestCount = id, count
		}
	}
	return best, nil
}
