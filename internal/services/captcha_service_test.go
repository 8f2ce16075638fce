package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMathProblem(t *testing.T) {
	s := NewCaptchaService(42)
	for i := 0; i < 200; i++ {
		question, answer := s.GenerateMathProblem()
		var a, b int
		var op string
		_, err := fmt.Sscanf(question, "%d %s %d", &a, &op, &b)
		assert.NoError(t, err)
		switch op {
		case "+":
			assert.Equal(t, a+b, answer)
		case "-":
			assert.Equal(t, a-b, answer)
			assert.GreaterOrEqual(t, answer, 0)
		default:
			t.Fatalf("unexpected operator in %q", question)
		}
	}
}

func TestVerify(t *testing.T) {
	s := NewCaptchaService(1)
	assert.True(t, s.Verify(" 7 ", 7))
	assert.False(t, s.Verify("8", 7))
	assert.False(t, s.Verify("seven", 7))
}
