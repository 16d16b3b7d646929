package randomizer

import (
	"context"

	"github.com/slok/dothis/internal/active"
)

// StartTimers enables the background timers until ctx is done or
// StopTimers is called: the active task tick while a task is active and
// the cooldown poll while every task is on cooldown. Without calling it the
// service only changes on commands.
func (s *Service) StartTimers(ctx context.Context) {
	s.timersMu.Lock()
	s.timersCtx = ctx
	s.timersMu.Unlock()

	s.mu.Lock()
	st := s.ctrl.State()
	now := s.clock.Now()
	emptyPool := len(s.available(now)) == 0 && s.onCooldown(now)
	s.unlock()

	if st == active.StateActive {
		s.startTick()
	}
	if emptyPool && st != active.StateActive && st != active.StateExpired {
		s.startPoll()
	}
}

// StopTimers stops the background timers.
func (s *Service) StopTimers() {
	s.timersMu.Lock()
	s.timersCtx = nil
	s.timersMu.Unlock()

	s.tick.Stop()
	s.poll.Stop()
}

func (s *Service) timersContext() (context.Context, bool) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	return s.timersCtx, s.timersCtx != nil
}

func (s *Service) startTick() {
	ctx, ok := s.timersContext()
	if !ok {
		return
	}

	s.tick.Start(ctx, func(ctx context.Context, stop func()) {
		if res := s.Tick(ctx); res.Stop {
			stop()
		}
	})
}

func (s *Service) startPoll() {
	ctx, ok := s.timersContext()
	if !ok || s.poll.Running() {
		return
	}

	s.logger.Debugf("All tasks on cooldown, polling every %s", s.poll.Period())
	s.poll.Start(ctx, func(ctx context.Context, stop func()) {
		if s.PollCooldowns(ctx) {
			stop()
		}
	})
}
