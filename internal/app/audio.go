package app

import (
	"log/slog"

	"trivia/internal/domain"
)

// CueSink receives fire-and-forget audio cues. Failures are its own problem.
type CueSink interface {
	Notify(cue domain.Cue, audio domain.AudioSettings)
}

// LogCueSink writes audible cues to the log
type LogCueSink struct {
	Logger *slog.Logger
}

// Notify logs the cue if the settings make it audible
func (l LogCueSink) Notify(cue domain.Cue, audio domain.AudioSettings) {
	if !audio.Audible() {
		return
	}
	l.Logger.Debug("cue", "cue", cue, "volume", audio.Volume)
}

// notifyCue hands a cue to the sink, swallowing panics
func (s *GameSession) notifyCue(p *domain.CuePayload) {
	if s.cues == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("cue sink panicked", "cue", p.Cue, "panic", r)
		}
	}()
	s.cues.Notify(p.Cue, p.Audio)
}

// ToggleMute flips the session's mute setting
func (s *GameSession) ToggleMute() domain.AudioSettings {
	s.mu.Lock()
	defer s.unlock()

	s.touch()
	s.audio.Muted = !s.audio.Muted
	s.queueEvent(domain.EventAudioChanged, s.audio)
	return s.audio
}

// SetVolume sets the session's volume, clamped to [0, 1]
func (s *GameSession) SetVolume(v float64) domain.AudioSettings {
	s.mu.Lock()
	defer s.unlock()

	s.touch()
	s.audio = s.audio.WithVolume(v)
	s.queueEvent(domain.EventAudioChanged, s.audio)
	return s.audio
}

// cue queues an audio cue with the current settings (caller must hold lock)
func (s *GameSession) cue(c domain.Cue) {
	s.queueEvent(domain.EventCue, &domain.CuePayload{Cue: c, Audio: s.audio})
}
