package domain

import "fmt"

// HumanPlayerID is the roster ID of the local human player
const HumanPlayerID = "user"

// HumanColor is the color tag of the human player
const HumanColor = "cyan"

// MaxBots is the largest number of simulated opponents in a round
const MaxBots = 3

// BotNames are drawn without replacement when bots join a lobby
var BotNames = []string{
	"QuizWhiz", "MetroMaster", "BusPro", "TriviaTornado", "LogicLeaper",
	"StationSavvy", "CitySlicker", "FastTrack", "TheCommuter", "RailRider",
}

// BotColors is the palette bots take their color tag from
var BotColors = []string{"pink", "lime", "orange", "indigo", "teal"}

// TransitLocations label guest players by where they are waiting
var TransitLocations = []string{"Station", "Bus Stop", "Airport", "Ferry Terminal", "Home", "Just Waiting"}

// Player is a roster entry. It never changes once created.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsBot       bool   `json:"isBot"`
	ColorTag    string `json:"colorTag"`
}

// NewHumanPlayer creates the human roster entry
func NewHumanPlayer(displayName string) Player {
	return Player{
		ID:          HumanPlayerID,
		DisplayName: displayName,
		ColorTag:    HumanColor,
	}
}

// NewBotPlayer creates the n-th bot (1-based)
func NewBotPlayer(n int, name, color string) Player {
	return Player{
		ID:          fmt.Sprintf("bot%d", n),
		DisplayName: name,
		IsBot:       true,
		ColorTag:    color,
	}
}

// GuestName builds the display name for a player without an identity
func GuestName(location string) string {
	return "Guest @ " + location
}
