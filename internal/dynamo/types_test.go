package dynamo

import (
	"errors"
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			g.Expect(tt.state.IsValid()).To(Equal(tt.valid))
		})
	}
}

func TestState_NormAndSub(t *testing.T) {
	g := NewWithT(t)

	g.Expect(State{3, 4}.Norm()).To(BeNumerically("~", 5.0, 1e-12))
	g.Expect(State{4, 5, 6}.Sub(State{1, 2, 3})).To(Equal(State{3, 3, 3}))

	s := State{1, 2}
	c := s.Clone()
	c[0] = 99
	g.Expect(s[0]).To(Equal(1.0))
}

func TestClamp(t *testing.T) {
	g := NewWithT(t)

	g.Expect(Clamp(-1, 0, 5)).To(Equal(0.0))
	g.Expect(Clamp(7, 0, 5)).To(Equal(5.0))
	g.Expect(Clamp(2.5, 0, 5)).To(Equal(2.5))
}

func TestConfigError(t *testing.T) {
	g := NewWithT(t)

	err := InvalidParam("pivot", 0, "must be positive")
	g.Expect(errors.Is(err, ErrInvalidConfiguration)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("pivot=0"))

	var cfgErr *ConfigError
	g.Expect(errors.As(err, &cfgErr)).To(BeTrue())
	g.Expect(cfgErr.Param).To(Equal("pivot"))

	g.Expect(errors.Is(Busy("set pivot"), ErrPreconditionViolation)).To(BeTrue())
}
