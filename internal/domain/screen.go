package domain

// Screen is the top-level state of a game session
type Screen string

const (
	ScreenHome        Screen = "HOME"
	ScreenLobby       Screen = "LOBBY"        // Matchmaking and question loading
	ScreenGame        Screen = "GAME"         // Timed round in progress
	ScreenSuddenDeath Screen = "SUDDEN_DEATH" // Single-question tie-break
	ScreenScore       Screen = "SCORE"
	ScreenLogin       Screen = "LOGIN"
	ScreenSignup      Screen = "SIGNUP"
	ScreenSocial      Screen = "SOCIAL"
)

var validTransitions = map[Screen][]Screen{
	ScreenHome:        {ScreenLobby, ScreenLogin, ScreenSignup, ScreenSocial},
	ScreenLobby:       {ScreenGame},
	ScreenGame:        {ScreenSuddenDeath, ScreenScore},
	ScreenSuddenDeath: {ScreenScore},
	ScreenScore:       {ScreenHome, ScreenLobby},
	ScreenLogin:       {ScreenHome},
	ScreenSignup:      {ScreenHome},
	ScreenSocial:      {ScreenHome},
}

// String returns the string representation of the screen
func (s Screen) String() string {
	return string(s)
}

// IsAuxiliary reports whether the screen is one of the non-game screens hanging off HOME
func (s Screen) IsAuxiliary() bool {
	return s == ScreenLogin || s == ScreenSignup || s == ScreenSocial
}

// CanTransitionTo checks if a transition from the current screen to target is valid
func (s Screen) CanTransitionTo(target Screen) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, screen := range allowed {
		if screen == target {
			return true
		}
	}
	return false
}
