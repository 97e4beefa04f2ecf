package physics

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
)

// runToDone drives m at 60 fps with the default sub-step until it reports done.
func runToDone(t *testing.T, m dynamo.Model, maxFrames int) {
	t.Helper()
	g := NewWithT(t)

	d := dynamo.NewDriver(dynamo.DefaultSubStep, dynamo.DefaultMaxSteps)
	_, err := d.Run(context.Background(), m, dynamo.DefaultFrame, maxFrames)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(m.Done()).To(BeTrue(), "model did not finish within %d frames", maxFrames)
}
