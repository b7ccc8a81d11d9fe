package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/vportela/leadcrm/internal/entity"
)

type LeadStats struct {
	Total          int     `json:"total"`
	Won            int     `json:"won"`
	Lost           int     `json:"lost"`
	InProgress     int     `json:"in_progress"`
	ConversionRate float64 `json:"conversion_rate"`
	LossRate       float64 `json:"loss_rate"`
	ActiveRate     float64 `json:"active_rate"`
}

type MemberPerformance struct {
	Name           string  `json:"name"`
	TotalLeads     int     `json:"total_leads"`
	WonLeads       int     `json:"won_leads"`
	ConversionRate float64 `json:"conversion_rate"`
	Rank           int     `json:"rank"`
}

// Rate is part/total as a percentage rounded to one decimal, and 0 (never
// NaN) on an empty set.
func Rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func ComputeStats(leads []entity.Lead) LeadStats {
	s := LeadStats{Total: len(leads)}
	for _, lead := range leads {
		switch lead.Status {
		case entity.StatusWon:
			s.Won++
		case entity.StatusLost:
			s.Lost++
		case entity.StatusInProgress:
			s.InProgress++
		}
	}
	s.ConversionRate = Rate(s.Won, s.Total)
	s.LossRate = Rate(s.Lost, s.Total)
	s.ActiveRate = Rate(s.InProgress, s.Total)
	return s
}

// TeamLeaderboard ranks assignees by conversion rate, descending. The sort is
// stable: ties keep first-seen order.
func TeamLeaderboard(leads []entity.Lead) []MemberPerformance {
	var members []string
	seen := make(map[string]bool)
	for _, lead := range leads {
		if !seen[lead.AssignedTo] {
			seen[lead.AssignedTo] = true
			members = append(members, lead.AssignedTo)
		}
	}

	board := make([]MemberPerformance, 0, len(members))
	for _, member := range members {
		var total, won int
		for _, lead := range leads {
			if lead.AssignedTo != member {
				continue
			}
			total++
			if lead.Status == entity.StatusWon {
				won++
			}
		}
		board = append(board, MemberPerformance{
			Name:           member,
			TotalLeads:     total,
			WonLeads:       won,
			ConversionRate: Rate(won, total),
		})
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].ConversionRate > board[j].ConversionRate
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board
}

func TeamAverage(board []MemberPerformance) float64 {
	if len(board) == 0 {
		return 0
	}
	var sum float64
	for _, m := range board {
		sum += m.ConversionRate
	}
	return math.Round(sum/float64(len(board))*10) / 10
}

// RecentActivity counts leads created in the last seven days and leads won
// (by updated_at) in the same window.
func RecentActivity(leads []entity.Lead, now time.Time) (created, wins int) {
	weekAgo := now.AddDate(0, 0, -7)
	for _, lead := range leads {
		if !lead.CreatedAt.Before(weekAgo) {
			created++
		}
		if lead.Status == entity.StatusWon && !lead.UpdatedAt.Before(weekAgo) {
			wins++
		}
	}
	return created, wins
}
