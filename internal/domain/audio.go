package domain

// Cue is a fire-and-forget sound cue
type Cue string

const (
	CueStart     Cue = "start"
	CueCorrect   Cue = "correct"
	CueIncorrect Cue = "incorrect"
	CuePowerUp   Cue = "powerup"
	CueSkip      Cue = "skip"
	CueWin       Cue = "win"
	CueLose      Cue = "lose"
)

// DefaultVolume is the volume used until the player changes it
const DefaultVolume = 0.5

// AudioSettings are owned by a session and handed to the sink with every cue
type AudioSettings struct {
	Muted  bool    `json:"muted"`
	Volume float64 `json:"volume"`
}

// WithVolume returns the settings with volume clamped to [0, 1]
func (a AudioSettings) WithVolume(v float64) AudioSettings {
	a.Volume = max(0, min(1, v))
	return a
}

// Audible reports whether a cue would actually be heard
func (a AudioSettings) Audible() bool {
	return !a.Muted && a.Volume > 0
}
