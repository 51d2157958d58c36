package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler lets numerator out of every denominator events through, in
// a fixed pattern: the first numerator events of each window pass.
type ratioSampler struct {
	mu     sync.Mutex
	pass   int
	window int
	seen   int
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set replaces the ratio and restarts the window. A non-positive part
// disables sampling so every event passes.
func (s *ratioSampler) Set(numerator, denominator int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = 0
	if numerator <= 0 || denominator <= 0 {
		s.pass, s.window = 0, 0
		return
	}
	s.pass = min(numerator, denominator)
	s.window = denominator
}

// Allow reports whether the current event passes.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window == 0 {
		return true
	}
	pos := s.seen % s.window
	s.seen = pos + 1
	return pos < s.pass
}

// parseRatioSpec accepts "n/d" or a bare "d" meaning 1/d. Anything else,
// and a bare non-positive number, yields 0/0.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
