package app

import (
	"context"
	"fmt"

	"trivia/internal/domain"
)

// PlayAgain leaves SCORE. Signed-in players go HOME; guests go straight
// back to a fresh LOBBY.
func (s *GameSession) PlayAgain() error {
	s.mu.Lock()
	defer s.unlock()

	if s.round.Screen != domain.ScreenScore {
		return fmt.Errorf("%w: play again from %s", domain.ErrInvalidTransition, s.round.Screen)
	}
	s.touch()

	var err error
	if s.identity != nil {
		err = s.transition(domain.ScreenHome)
	} else {
		err = s.startLobby()
	}
	if err != nil {
		return err
	}
	s.cue(domain.CueStart)
	return nil
}

// GoHome returns to HOME from SCORE or one of the auxiliary screens
func (s *GameSession) GoHome() error {
	s.mu.Lock()
	defer s.unlock()

	screen := s.round.Screen
	if screen != domain.ScreenScore && !screen.IsAuxiliary() {
		return fmt.Errorf("%w: home from %s", domain.ErrInvalidTransition, screen)
	}
	s.touch()
	return s.transition(domain.ScreenHome)
}

// Navigate opens LOGIN, SIGNUP or SOCIAL from HOME
func (s *GameSession) Navigate(target domain.Screen) error {
	s.mu.Lock()
	defer s.unlock()

	if !target.IsAuxiliary() {
		return fmt.Errorf("%w: cannot navigate to %s", domain.ErrInvalidTransition, target)
	}
	if target == domain.ScreenSocial && s.identity == nil {
		return fmt.Errorf("%w: %s needs an identity", domain.ErrInvalidTransition, target)
	}
	s.touch()
	return s.transition(target)
}

// Signup registers an account from the SIGNUP screen and signs it in
func (s *GameSession) Signup(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	if err := s.expectScreen(domain.ScreenSignup); err != nil {
		return domain.Identity{}, err
	}
	if err := creds.Validate(); err != nil {
		return domain.Identity{}, err
	}

	id, err := s.store.Register(ctx, creds)
	if err != nil {
		return domain.Identity{}, err
	}
	return id, s.adopt(id, domain.ScreenSignup)
}

// Login authenticates from the LOGIN screen
func (s *GameSession) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	if err := s.expectScreen(domain.ScreenLogin); err != nil {
		return domain.Identity{}, err
	}

	id, err := s.store.Authenticate(ctx, email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	return id, s.adopt(id, domain.ScreenLogin)
}

// Logout forgets the identity. SOCIAL falls back to HOME.
func (s *GameSession) Logout() error {
	s.mu.Lock()
	defer s.unlock()

	s.touch()
	if s.identity == nil {
		return nil
	}

	s.identity = nil
	s.identityTouched = true
	s.persist("clear identity", func(ctx context.Context) error {
		return s.store.ClearSessionIdentity(ctx, s.profile)
	})
	s.queueEvent(domain.EventIdentityChanged, nil)

	if s.round.Screen == domain.ScreenSocial {
		return s.transition(domain.ScreenHome)
	}
	return nil
}

func (s *GameSession) expectScreen(screen domain.Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round.Screen != screen {
		return fmt.Errorf("%w: expected %s, on %s", domain.ErrInvalidTransition, screen, s.round.Screen)
	}
	s.touch()
	return nil
}

// adopt signs id in and leaves the auth screen it came from
func (s *GameSession) adopt(id domain.Identity, from domain.Screen) error {
	s.mu.Lock()
	defer s.unlock()

	s.identity = &id
	s.identityTouched = true
	s.persist("save identity", func(ctx context.Context) error {
		return s.store.SetSessionIdentity(ctx, s.profile, id)
	})
	s.queueEvent(domain.EventIdentityChanged, &id)
	s.logger.Info("signed in", "user", id.DisplayName())

	if s.round.Screen == from {
		return s.transition(domain.ScreenHome)
	}
	return nil
}
