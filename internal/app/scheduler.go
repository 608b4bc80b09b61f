package app

import "time"

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. Callbacks run on their own
// goroutine and must take the session lock themselves.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler schedules with the wall clock
var RealScheduler Scheduler = realScheduler{}

// timerGroup tracks timers that are cancelled together
type timerGroup struct {
	timers []Timer
}

func (g *timerGroup) add(t Timer) {
	g.timers = append(g.timers, t)
}

func (g *timerGroup) stopAll() {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
}
