package services

import (
	"log"

	"testquest/models"
)

// Milestone badges latch off the verified-bug count. Thresholds are checked
// with >= plus a not-already-latched guard, so a count that skips past a
// threshold can never miss its award.
var milestoneBadges = []struct {
	Name      string
	Threshold int64
	Flag      func(*models.UserBadges) *bool
}{
	{"First Blood", 1, func(b *models.UserBadges) *bool { return &b.FirstBlood }},
	{"Bug Hunter", 10, func(b *models.UserBadges) *bool { return &b.BugHunter }},
	{"Elite Tester", 100, func(b *models.UserBadges) *bool { return &b.EliteTester }},
}

// latchMilestoneBadges sets every milestone badge the tester's verified-bug
// count has reached and returns the names of the newly awarded ones. The
// caller persists the user.
func latchMilestoneBadges(user *models.User) []string {
	var awarded []string
	for _, b := range milestoneBadges {
		flag := b.Flag(&user.Badges)
		if user.Stats.VerifiedBugs >= b.Threshold && !*flag {
			*flag = true
			awarded = append(awarded, b.Name)
			log.Printf("🏆 Badge awarded: %s → %s", b.Name, user.ID)
		}
	}
	return awarded
}
