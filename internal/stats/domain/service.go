package domain

import (
	"context"
	"errors"
)

type ConsumptionRequest struct {
	Months   int
	PerDrink bool
	MemberID string
}

type LeaderboardRequest struct {
	Limit int
}

type Service interface {
	Consumption(context.Context, ConsumptionRequest) (ConsumptionResponse, error)
	Leaderboard(context.Context, LeaderboardRequest) (LeaderboardResponse, error)
	CommunityGrowth(context.Context) (GrowthResponse, error)
	Overview(context.Context) (OverviewResponse, error)
}

var (
	ErrInvalidMonths = errors.New("invalid_months")
	ErrInvalidLimit  = errors.New("invalid_limit")
	ErrInvalidMember = errors.New("invalid_member")
)
