package repo_test

import (
	"testing"

	"github.com/hamed0406/alarmcore/internal/repo"
	"github.com/hamed0406/alarmcore/internal/repo/memory"
	sq "github.com/hamed0406/alarmcore/internal/repo/sqlite"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.AlarmStore = memory.New()

	// The SQLite store compiles against the port, too.
	var _ repo.AlarmStore = (*sq.Store)(nil)
}
