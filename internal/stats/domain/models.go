package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tapledger/internal/stats/window"
)

// DrinkKey identifies a drink column in a consumption series.
type DrinkKey string

func KeyOf(id snowflake.ID) DrinkKey {
	return DrinkKey(id.String())
}

// ConsumptionPoint is one bucket of a consumption series in litres.
// When PerDrink is set it holds every drink of the series, zeros included,
// and Total equals the sum of its values.
type ConsumptionPoint struct {
	Start      time.Time            `json:"start"`
	Label      string               `json:"label"`
	PerDrink   map[DrinkKey]float64 `json:"per_drink,omitempty"`
	Total      float64              `json:"total"`
	Cumulative float64              `json:"cumulative"`
}

type LegendEntry struct {
	DrinkID DrinkKey `json:"drink_id"`
	Label   string   `json:"label"`
	Color   string   `json:"color"`
}

// LeaderboardEntry ranks one member by trailing consumption. ChangePct is nil
// when the previous window has no consumption.
type LeaderboardEntry struct {
	Rank          int          `json:"rank"`
	MemberID      snowflake.ID `json:"member_id"`
	MemberName    string       `json:"member_name"`
	Avatar        string       `json:"avatar,omitempty"`
	TrailingTotal float64      `json:"trailing_total"`
	ShortTotal    float64      `json:"short_total"`
	PreviousTotal float64      `json:"previous_total"`
	ChangePct     *float64     `json:"change_pct"`
}

// Profile is the display data the leaderboard attaches to a member.
type Profile struct {
	Name   string
	Avatar string
}

type GrowthResponse struct {
	Reference      time.Time     `json:"reference"`
	Current        float64       `json:"current"`
	Previous       float64       `json:"previous"`
	ChangePct      *float64      `json:"change_pct"`
	CurrentWindow  window.Bucket `json:"current_window"`
	PreviousWindow window.Bucket `json:"previous_window"`
}

type ConsumptionResponse struct {
	Reference time.Time          `json:"reference"`
	Points    []ConsumptionPoint `json:"points"`
	Legend    []LegendEntry      `json:"legend"`
}

type LeaderboardResponse struct {
	Reference time.Time          `json:"reference"`
	Windows   window.Windows     `json:"windows"`
	Entries   []LeaderboardEntry `json:"entries"`
}

type OverviewResponse struct {
	Reference   time.Time           `json:"reference"`
	Consumption ConsumptionResponse `json:"consumption"`
	Leaderboard LeaderboardResponse `json:"leaderboard"`
	Growth      GrowthResponse      `json:"growth"`
}
