package aggregate

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/tapledger/internal/order/domain"
	"github.com/smallbiznis/tapledger/internal/stats/domain"
	"github.com/smallbiznis/tapledger/internal/stats/window"
)

const DefaultLeaderboardLimit = 10

type LeaderboardOptions struct {
	Months int
	Days   int
	Limit  int
}

type tally struct {
	trailing decimal.Decimal
	short    decimal.Decimal
	previous decimal.Decimal
	inOuter  bool
	name     string
	seen     time.Time
}

// Leaderboard ranks members by personal volume over the trailing monthly
// buckets, descending, ties by member id. Only members with an order inside
// the trailing buckets are ranked.
func Leaderboard(orders []orderdomain.Order, ref window.Reference, opts LeaderboardOptions, profiles map[snowflake.ID]domain.Profile) ([]domain.LeaderboardEntry, window.Windows) {
	outer := window.Outer(window.MonthlyBuckets(ref, opts.Months))
	windows := window.RollingWindows(ref, opts.Days)

	tallies := map[snowflake.ID]*tally{}
	for _, order := range orders {
		if !order.IsPersonal() {
			continue
		}
		t, ok := tallies[order.MemberID]
		if !ok {
			t = &tally{}
			tallies[order.MemberID] = t
		}
		if !order.CreatedAt.Before(t.seen) {
			t.name = order.MemberName
			t.seen = order.CreatedAt
		}

		volume := order.Volume()
		if outer.Contains(order.CreatedAt) {
			t.inOuter = true
			t.trailing = t.trailing.Add(volume)
		}
		switch {
		case windows.Current.Contains(order.CreatedAt):
			t.short = t.short.Add(volume)
		case windows.Previous.Contains(order.CreatedAt):
			t.previous = t.previous.Add(volume)
		}
	}

	type ranked struct {
		entry    domain.LeaderboardEntry
		trailing decimal.Decimal
	}
	rows := make([]ranked, 0, len(tallies))
	for memberID, t := range tallies {
		if !t.inOuter {
			continue
		}
		entry := domain.LeaderboardEntry{
			MemberID:      memberID,
			MemberName:    t.name,
			TrailingTotal: round2(t.trailing),
			ShortTotal:    round2(t.short),
			PreviousTotal: round2(t.previous),
			ChangePct:     Growth(t.short, t.previous),
		}
		if profile, ok := profiles[memberID]; ok {
			if profile.Name != "" {
				entry.MemberName = profile.Name
			}
			entry.Avatar = profile.Avatar
		}
		rows = append(rows, ranked{entry: entry, trailing: t.trailing})
	}

	// Order on the exact sums; two members only tie when their litres match
	// exactly, not when they round to the same value.
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].trailing.Cmp(rows[j].trailing); c != 0 {
			return c > 0
		}
		return rows[i].entry.MemberID < rows[j].entry.MemberID
	})
	entries := make([]domain.LeaderboardEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].entry
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, windows
}
