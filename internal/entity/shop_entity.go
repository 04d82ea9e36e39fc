package entity

import (
	"time"

	"github.com/google/uuid"
)

// Shop is the tenant. All child entities hang off it; hard deletion
// cascades on a redact request.
type Shop struct {
	Id            uuid.UUID
	Domain        string
	AccessToken   string
	Settings      []byte
	InstalledAt   time.Time
	UninstalledAt *time.Time

	// Quota counters. Limits of -1 mean unlimited. Cleanup usage is
	// recorded but never enforced.
	GenerationDailyUsage   int
	GenerationMonthlyUsage int
	GenerationDailyLimit   int
	GenerationMonthlyLimit int
	CleanupDailyUsage      int
	CleanupMonthlyUsage    int
	LastDailyReset         time.Time
	LastMonthlyReset       time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (s *Shop) IsInstalled() bool {
	return s.UninstalledAt == nil
}
