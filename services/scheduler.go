package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRankScheduler refreshes the leaderboard in the background so podium
// badges latch even when nobody is hitting the endpoint.
func (s *LeaderboardService) StartRankScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 10 minutes: regenerate the board and latch rank badges
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			board, err := s.Generate()
			if err != nil {
				log.Printf("[Scheduler] Leaderboard refresh failed: %v", err)
				return
			}
			log.Printf("✅ Leaderboard refreshed: %d testers ranked", len(board.Entries))
		}),
	)
}
