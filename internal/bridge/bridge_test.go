package bridge

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/onsi/gomega"
)

type envelope struct {
	OK     bool            `json:"ok"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
}

func call(t *testing.T, req string) envelope {
	t.Helper()
	out := NewHandler(nil).HandleJSON(context.Background(), []byte(req))
	var env envelope
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("response is not JSON: %s", out)
	}
	return env
}

func TestPendulumRun(t *testing.T) {
	g := NewWithT(t)

	env := call(t, `{"lab":"pendulum","config":{"pendulum":{"pivot_offset":25,"target_periods":4}}}`)
	g.Expect(env.Error).To(BeEmpty())
	g.Expect(env.OK).To(BeTrue())

	var run PendulumRun
	g.Expect(json.Unmarshal(env.Result, &run)).To(Succeed())
	g.Expect(run.Periods).To(Equal(4))
	g.Expect(run.AveragePeriod).To(BeNumerically("~", run.Theoretical, run.Theoretical*0.01))
	g.Expect(run.Angles).NotTo(BeEmpty())
}

func TestAirTableRun(t *testing.T) {
	g := NewWithT(t)

	env := call(t, `{"lab":"airtable","launch":{"x":30,"y":-60}}`)
	g.Expect(env.OK).To(BeTrue())

	var run AirTableRun
	g.Expect(json.Unmarshal(env.Result, &run)).To(Succeed())
	g.Expect(run.Flight.HasApex).To(BeTrue())
	g.Expect(run.Flight.TimeToApex).To(BeNumerically("~", 0.7025, 0.01))
	g.Expect(run.Predicted).NotTo(BeEmpty())
	g.Expect(string(env.Result)).To(ContainSubstring(`"outcome":"landed"`))
}

func TestCentripetalRun(t *testing.T) {
	g := NewWithT(t)

	env := call(t, `{"lab":"centripetal","config":{"centripetal":{"release_height":20}}}`)
	g.Expect(env.OK).To(BeTrue())

	var run CentripetalRun
	g.Expect(json.Unmarshal(env.Result, &run)).To(Succeed())
	g.Expect(run.ExtensionDueToMass).To(BeNumerically("~", 1.7, 1e-9))
	g.Expect(run.MaxDisplacement).To(BeNumerically(">", 0))
	g.Expect(run.Status).NotTo(BeEmpty())
	g.Expect(run.BobPeriod).To(BeNumerically("~", 1.45, 0.05))
}

func TestExperimentReport(t *testing.T) {
	g := NewWithT(t)

	env := call(t, `{"lab":"pendulum","values":[10,20,30,40]}`)
	g.Expect(env.Error).To(BeEmpty())

	var rep struct {
		Lab     string       `json:"lab"`
		Samples [][2]float64 `json:"samples"`
		Value   float64      `json:"value"`
	}
	g.Expect(json.Unmarshal(env.Result, &rep)).To(Succeed())
	g.Expect(rep.Lab).To(Equal("pendulum"))
	g.Expect(rep.Samples).To(HaveLen(4))
	g.Expect(rep.Value).To(BeNumerically("~", 980, 10))
}

func TestErrorsStayInsideResponse(t *testing.T) {
	tests := []struct {
		name, req, want string
	}{
		{"malformed", `{"lab":`, "bad request"},
		{"unknown lab", `{"lab":"trebuchet"}`, "trebuchet"},
		{"unknown preset", `{"lab":"pendulum","preset":"nope"}`, "unknown preset"},
		{"invalid config", `{"lab":"pendulum","config":{"pendulum":{"pivot_offset":17}}}`, "pivot_offset"},
		{"single sample", `{"lab":"pendulum","values":[15]}`, "insufficient data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			env := call(t, tt.req)
			g.Expect(env.OK).To(BeFalse())
			g.Expect(env.Error).To(ContainSubstring(tt.want))
		})
	}
}

func TestPresetRequest(t *testing.T) {
	g := NewWithT(t)
	env := call(t, `{"lab":"airtable","preset":"steep","launch":{"x":10,"y":-40}}`)
	g.Expect(env.OK).To(BeTrue())
}
