package domain

// Registry holds the roster of a round and one stats record per player.
// It is not safe for concurrent use; the owning session serializes access.
type Registry struct {
	players []Player
	stats   map[string]PlayerStats
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		stats: make(map[string]PlayerStats),
	}
}

// AddPlayer appends a player to the roster and gives it a fresh stats record
func (r *Registry) AddPlayer(p Player) error {
	if _, exists := r.stats[p.ID]; exists {
		return ErrPlayerExists
	}
	if p.IsBot && r.BotCount() >= MaxBots {
		return ErrRosterFull
	}

	r.players = append(r.players, p)
	r.stats[p.ID] = PlayerStats{}
	return nil
}

// InitStats resets a rostered player's stats to zero
func (r *Registry) InitStats(playerID string) error {
	if _, exists := r.stats[playerID]; !exists {
		return ErrPlayerNotFound
	}
	r.stats[playerID] = PlayerStats{}
	return nil
}

// Stats returns a copy of a player's stats
func (r *Registry) Stats(playerID string) (PlayerStats, error) {
	s, ok := r.stats[playerID]
	if !ok {
		return PlayerStats{}, ErrPlayerNotFound
	}
	return s, nil
}

// UpdateStats is the only mutation path for stats. fn works on a copy which
// is committed only if it keeps the stats invariants.
func (r *Registry) UpdateStats(playerID string, fn func(*PlayerStats)) error {
	current, ok := r.stats[playerID]
	if !ok {
		return ErrPlayerNotFound
	}

	next := current
	fn(&next)
	if err := current.checkTransition(next); err != nil {
		return err
	}

	r.stats[playerID] = next
	return nil
}

// Player returns a rostered player by ID
func (r *Registry) Player(playerID string) (Player, error) {
	for _, p := range r.players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return Player{}, ErrPlayerNotFound
}

// Players returns the roster in join order
func (r *Registry) Players() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Bots returns the bot players in join order
func (r *Registry) Bots() []Player {
	bots := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		if p.IsBot {
			bots = append(bots, p)
		}
	}
	return bots
}

// BotCount returns the number of bots in the roster
func (r *Registry) BotCount() int {
	n := 0
	for _, p := range r.players {
		if p.IsBot {
			n++
		}
	}
	return n
}

// Len returns the roster size
func (r *Registry) Len() int {
	return len(r.players)
}

// AllStats returns a copy of every stats record keyed by player ID
func (r *Registry) AllStats() map[string]PlayerStats {
	out := make(map[string]PlayerStats, len(r.stats))
	for id, s := range r.stats {
		out[id] = s
	}
	return out
}

// Leaders returns the players holding the highest score, in join order
func (r *Registry) Leaders() []Player {
	maxScore := -1
	for _, p := range r.players {
		if s := r.stats[p.ID].Score; s > maxScore {
			maxScore = s
		}
	}

	leaders := make([]Player, 0, 1)
	for _, p := range r.players {
		if r.stats[p.ID].Score == maxScore {
			leaders = append(leaders, p)
		}
	}
	return leaders
}
