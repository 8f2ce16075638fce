package services

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// CaptchaService produces small arithmetic challenges for the sign-up form.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService(seed uint64) *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// GenerateMathProblem returns a question like "3 + 5" and its answer.
// Subtraction never goes negative.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	s.mu.Lock()
	a, b, op := s.rnd.IntN(10), s.rnd.IntN(10), s.rnd.IntN(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// Verify compares the submitted text with the expected answer.
func (s *CaptchaService) Verify(input string, expected int) bool {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	return err == nil && n == expected
}
