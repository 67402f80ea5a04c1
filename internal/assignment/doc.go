// Package assignment holds the staff selection policies used when a new
// delivery or housekeeping task needs an owner.
//
// Both policies are pure: callers fetch the eligible staff and any state
// (rotation cursor, pending counts) from storage, ask the policy for a
// choice, then persist the result themselves.
package assignment
