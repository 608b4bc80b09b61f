package domain

import "time"

// Standing is one player's final line on the score screen
type Standing struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	IsBot       bool   `json:"isBot"`
	Score       int    `json:"score"`
}

// ScoreEntry is a finished round as kept on the leaderboard
type ScoreEntry struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Score     int        `json:"score"`
	Theme     string     `json:"theme"`
	Won       bool       `json:"won"`
	Standings []Standing `json:"standings,omitempty"`
	PlayedAt  time.Time  `json:"playedAt"`
}

// Standings builds the final table of a registry in roster order
func (r *Registry) Standings() []Standing {
	out := make([]Standing, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, Standing{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			IsBot:       p.IsBot,
			Score:       r.stats[p.ID].Score,
		})
	}
	return out
}
