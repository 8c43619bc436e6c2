package device

import "context"

type TouchPoint struct {
	X, Y int
}

// Rect is a screen region, Min inclusive and Max exclusive.
type Rect struct {
	MinX, MinY, MaxX, MaxY int
}

func (r Rect) Contains(p TouchPoint) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// ConfigButton is the bottom-right corner region of a width x height screen.
func ConfigButton(screenW, screenH, buttonW, buttonH int) Rect {
	return Rect{
		MinX: screenW - buttonW,
		MinY: screenH - buttonH,
		MaxX: screenW,
		MaxY: screenH,
	}
}

// NoInput is an input surface that never reports a touch.
type NoInput struct{}

func (NoInput) Poll(ctx context.Context) (TouchPoint, bool, error) {
	return TouchPoint{}, false, nil
}

// ScriptedInput replays a fixed list of touches, one per poll.
type ScriptedInput struct {
	Touches []TouchPoint
	polls   int
}

func (s *ScriptedInput) Poll(ctx context.Context) (TouchPoint, bool, error) {
	if s.polls >= len(s.Touches) {
		return TouchPoint{}, false, nil
	}
	p := s.Touches[s.polls]
	s.polls++
	return p, true, nil
}

// Polls reports how many times Poll returned a touch.
func (s *ScriptedInput) Polls() int {
	return s.polls
}
