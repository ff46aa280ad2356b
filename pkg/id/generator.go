// Package id generates identifiers for stored sweeps, runs, models and
// algorithm configurations.
package id

import (
	"github.com/google/uuid"
)

// Run returns a new run ID.
func Run() string {
	return uuid.New().String()
}

// Sweep returns a short sweep ID, prefixed so it reads well in reports.
func Sweep() string {
	return "sweep-" + uuid.New().String()[:8]
}

// Named returns a stable ID for a named entity, so that sweeps sharing a
// database reuse the same model and algorithm rows.
func Named(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+name)).String()
}
