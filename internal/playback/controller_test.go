package playback_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cooldown/internal/playback"
	"github.com/san-kum/cooldown/internal/samplelog"
	"github.com/san-kum/cooldown/internal/thermal"
)

type staticForm struct {
	in  thermal.Inputs
	err error
}

func (f *staticForm) Inputs() (thermal.Inputs, error) {
	if f.err != nil {
		return thermal.Inputs{}, f.err
	}
	return f.in, f.in.Validate()
}

type recordingRenderer struct {
	calls   int
	lastLen int
	cursor  int
}

func (r *recordingRenderer) Render(log *samplelog.Log, cursor int) {
	r.calls++
	r.lastLen = log.Len()
	r.cursor = cursor
}

func reference() thermal.Inputs {
	return thermal.Inputs{
		Length:          10,
		OuterDiameterMM: 114.3,
		WallThicknessMM: 6,
		InitialC:        20,
		TargetC:         -190,
		GasInletC:       -196,
		GasFlowNm3h:     50,
		AmbientC:        20,
		HeatTransfer:    0.05,
		Efficiency:      0.9,
	}
}

func ticks(c *playback.Controller, n int) {
	for i := 0; i < n; i++ {
		Expect(c.Tick()).To(Succeed())
	}
}

var _ = Describe("Controller", func() {
	var (
		form     *staticForm
		renderer *recordingRenderer
		c        *playback.Controller
	)

	BeforeEach(func() {
		form = &staticForm{in: reference()}
		renderer = &recordingRenderer{}
		c = playback.New(form, playback.WithRenderer(renderer), playback.WithStepSize(30))
	})

	It("starts idle with no run", func() {
		Expect(c.Phase()).To(Equal(playback.Idle))
		Expect(c.HasRun()).To(BeFalse())
		Expect(c.Log()).To(BeNil())
		Expect(c.Tick()).To(Succeed())
		Expect(renderer.calls).To(BeZero())
	})

	Describe("Play", func() {
		It("builds a run from the form and starts running", func() {
			h, err := c.Play()
			Expect(err).NotTo(HaveOccurred())
			Expect(h).NotTo(BeNil())
			Expect(c.Phase()).To(Equal(playback.Running))
			Expect(c.Log().Len()).To(Equal(1))
			Expect(c.State().Temperature).To(BeNumerically("~", 293.15, 1e-9))
		})

		It("stays idle when the inputs are rejected", func() {
			form.in.TargetC = 50
			_, err := c.Play()
			Expect(err).To(MatchError(thermal.ErrValidation))
			Expect(c.Phase()).To(Equal(playback.Idle))
			Expect(c.HasRun()).To(BeFalse())
		})

		It("surfaces form errors untouched", func() {
			boom := errors.New("field L is empty")
			form.err = boom
			_, err := c.Play()
			Expect(err).To(MatchError(boom))
		})
	})

	Describe("Tick", func() {
		BeforeEach(func() {
			_, err := c.Play()
			Expect(err).NotTo(HaveOccurred())
		})

		It("appends one sample per step and renders once", func() {
			c.SetSpeed(3)
			ticks(c, 2)
			Expect(c.Log().Len()).To(Equal(1 + 6))
			Expect(c.State().Elapsed).To(Equal(6 * 30.0))
			Expect(renderer.calls).To(Equal(2))
			Expect(renderer.cursor).To(Equal(6))
		})

		It("takes at least one step at zero speed", func() {
			c.SetSpeed(0)
			ticks(c, 1)
			Expect(c.Log().Len()).To(Equal(2))
		})

		It("cools monotonically and pauses exactly at target", func() {
			c.SetSpeed(playback.MaxSpeed)
			prev := c.State().Temperature
			for c.Phase() == playback.Running {
				Expect(c.Tick()).To(Succeed())
				Expect(c.State().Temperature).To(BeNumerically("<", prev))
				prev = c.State().Temperature
			}
			Expect(c.Phase()).To(Equal(playback.Paused))
			Expect(c.State().Temperature).To(BeNumerically("<=", c.Snapshot().TargetK))
			Expect(c.Snapshot().Progress()).To(Equal(1.0))
		})

		It("reports progress toward the target", func() {
			Expect(c.Snapshot().Progress()).To(BeZero())
			Expect(c.Tick()).To(Succeed())
			p := c.Snapshot().Progress()
			Expect(p).To(BeNumerically(">", 0))
			Expect(p).To(BeNumerically("<", 1))
		})

		It("applies a new step size to the next advance only", func() {
			ticks(c, 1)
			Expect(c.SetStepSize(5)).To(Succeed())
			ticks(c, 1)

			s1, _ := c.Log().At(1)
			s2, _ := c.Log().At(2)
			Expect(s1.Elapsed).To(Equal(30.0))
			Expect(s2.Elapsed).To(Equal(35.0))
		})

		It("ignores an invalid initial step size", func() {
			fresh := playback.New(form, playback.WithStepSize(0))
			Expect(fresh.StepSize()).To(Equal(playback.DefaultStepSize))
		})

		It("rejects a non-positive step size", func() {
			Expect(c.SetStepSize(0)).To(MatchError(thermal.ErrValidation))
			Expect(c.StepSize()).To(Equal(30.0))
		})
	})

	Describe("speed scaling", func() {
		elapsedAfter := func(speed float64, n int) float64 {
			ctl := playback.New(&staticForm{in: reference()}, playback.WithStepSize(30), playback.WithSpeed(speed))
			_, err := ctl.Play()
			Expect(err).NotTo(HaveOccurred())
			ticks(ctl, n)
			return ctl.State().Elapsed
		}

		It("advances at speed 2 for N ticks as far as speed 1 for 2N ticks", func() {
			Expect(elapsedAfter(2, 10)).To(Equal(elapsedAfter(1, 20)))
		})

		It("clamps the multiplier", func() {
			c.SetSpeed(9)
			Expect(c.Speed()).To(Equal(playback.MaxSpeed))
			Expect(c.StepsPerTick()).To(Equal(4))
			c.SetSpeed(-1)
			Expect(c.Speed()).To(BeZero())
			Expect(c.StepsPerTick()).To(Equal(1))
		})
	})

	Describe("Pause", func() {
		It("is idempotent and stops ticks", func() {
			_, err := c.Play()
			Expect(err).NotTo(HaveOccurred())
			ticks(c, 1)

			c.Pause()
			c.Pause()
			Expect(c.Phase()).To(Equal(playback.Paused))

			before := c.State()
			ticks(c, 3)
			Expect(c.State()).To(Equal(before))
		})

		It("leaves an idle controller idle", func() {
			c.Pause()
			Expect(c.Phase()).To(Equal(playback.Idle))
		})

		It("resumes from where it stopped", func() {
			_, _ = c.Play()
			ticks(c, 2)
			c.Pause()
			_, err := c.Play()
			Expect(err).NotTo(HaveOccurred())
			ticks(c, 1)
			Expect(c.State().Elapsed).To(Equal(90.0))
			Expect(c.Log().Len()).To(Equal(4))
		})
	})

	Describe("Reset", func() {
		It("returns to the initial condition every time", func() {
			_, _ = c.Play()
			ticks(c, 5)

			var first thermal.State
			for i := 0; i < 3; i++ {
				Expect(c.Reset()).To(Succeed())
				if i == 0 {
					first = c.State()
				}
				Expect(c.State()).To(Equal(first))
				Expect(c.Phase()).To(Equal(playback.Paused))
				Expect(c.State().Elapsed).To(BeZero())
				Expect(c.State().Temperature).To(BeNumerically("~", 293.15, 1e-9))
				Expect(c.Log().Len()).To(Equal(1))
				Expect(c.Snapshot().NetMJ).To(BeZero())
			}
		})

		It("truncates the same log in place", func() {
			_, _ = c.Play()
			ticks(c, 3)
			log := c.Log()

			Expect(c.Reset()).To(Succeed())
			Expect(c.Log()).To(BeIdenticalTo(log))
			Expect(log.Len()).To(Equal(1))
		})

		It("picks up changed inputs", func() {
			_, _ = c.Play()
			ticks(c, 1)
			form.in.InitialC = 10
			Expect(c.Reset()).To(Succeed())
			Expect(c.State().Temperature).To(BeNumerically("~", 283.15, 1e-9))
		})

		It("drops to idle when the new inputs are invalid", func() {
			_, _ = c.Play()
			form.in.WallThicknessMM = 100
			Expect(c.Reset()).To(MatchError(thermal.ErrGeometry))
			Expect(c.Phase()).To(Equal(playback.Idle))
			Expect(c.HasRun()).To(BeFalse())
		})
	})

	Describe("Seek", func() {
		BeforeEach(func() {
			_, err := c.Play()
			Expect(err).NotTo(HaveOccurred())
			ticks(c, 10)
		})

		It("restores the logged sample without touching the log", func() {
			want, err := c.Log().At(4)
			Expect(err).NotTo(HaveOccurred())
			n := c.Log().Len()

			Expect(c.Seek(4)).To(Succeed())
			Expect(c.State()).To(Equal(want.State()))
			Expect(c.Log().Len()).To(Equal(n))
			Expect(c.Phase()).To(Equal(playback.Paused))
			Expect(renderer.cursor).To(Equal(4))
		})

		It("rejects indices that were never logged", func() {
			Expect(c.Seek(c.Log().Len())).To(MatchError(samplelog.ErrIndexOutOfRange))
			Expect(c.Seek(-1)).To(MatchError(samplelog.ErrIndexOutOfRange))
		})

		It("resumes from the end of the log after a seek", func() {
			tail := c.Log().Last()
			n := c.Log().Len()

			Expect(c.Seek(2)).To(Succeed())
			_, _ = c.Play()
			ticks(c, 1)

			Expect(c.Log().Len()).To(Equal(n + 1))
			Expect(c.State().Elapsed).To(Equal(tail.Elapsed + 30))
			Expect(c.Snapshot().Cursor).To(Equal(n))
		})

		It("keeps the curve cooling when the step changes after a seek", func() {
			Expect(c.SetStepSize(300)).To(Succeed())
			_, _ = c.Play()
			ticks(c, 20)

			Expect(c.Seek(0)).To(Succeed())
			Expect(c.SetStepSize(1)).To(Succeed())
			c.SetSpeed(playback.MaxSpeed)
			_, _ = c.Play()
			ticks(c, 50)

			samples := c.Log().Samples()
			for i := 1; i < len(samples); i++ {
				Expect(samples[i].Elapsed).To(BeNumerically(">", samples[i-1].Elapsed), "elapsed at %d", i)
				Expect(samples[i].Temperature).To(BeNumerically("<", samples[i-1].Temperature), "temperature at %d", i)
			}
			Expect(c.NetPower()).To(HaveLen(c.Log().Len()))
		})

		It("needs a run", func() {
			fresh := playback.New(form)
			Expect(fresh.Seek(0)).To(MatchError(playback.ErrNoRun))
		})
	})

	Describe("stall", func() {
		It("pauses and keeps the curve", func() {
			form.in.AmbientC = 40
			form.in.HeatTransfer = 100
			_, err := c.Play()
			Expect(err).NotTo(HaveOccurred())

			err = c.Tick()
			Expect(err).To(MatchError(thermal.ErrStall))
			var se *thermal.StallError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Elapsed).To(BeZero())
			Expect(c.Phase()).To(Equal(playback.Paused))
			Expect(c.Log().Len()).To(Equal(1))
			Expect(renderer.calls).To(Equal(1))
		})
	})

	Describe("Handle", func() {
		It("runs until the target is reached", func() {
			h, err := c.Play()
			Expect(err).NotTo(HaveOccurred())

			frames := 0
			err = h.Run(context.Background(), playback.FrameFunc(func(context.Context) error {
				frames++
				return nil
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Phase()).To(Equal(playback.Paused))
			Expect(frames).To(Equal(renderer.calls - 1))
			Expect(c.State().Temperature).To(BeNumerically("<=", c.Snapshot().TargetK))
		})

		It("stops when paused from inside a frame", func() {
			h, _ := c.Play()

			frames := 0
			err := h.Run(context.Background(), playback.FrameFunc(func(ctx context.Context) error {
				frames++
				if frames == 3 {
					c.Pause()
					return ctx.Err()
				}
				return nil
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal(3))
			Expect(renderer.calls).To(Equal(3))
			Expect(c.Phase()).To(Equal(playback.Paused))
		})

		It("goes stale after a reset", func() {
			h, _ := c.Play()
			err := h.Run(context.Background(), playback.FrameFunc(func(ctx context.Context) error {
				Expect(c.Reset()).To(Succeed())
				return ctx.Err()
			}))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Log().Len()).To(Equal(1))
		})

		It("pauses when the context ends", func() {
			h, _ := c.Play()
			ctx, cancel := context.WithCancel(context.Background())
			err := h.Run(ctx, playback.FrameFunc(func(fctx context.Context) error {
				cancel()
				return fctx.Err()
			}))
			Expect(err).To(MatchError(context.Canceled))
			Expect(c.Phase()).To(Equal(playback.Paused))
		})

		It("returns the stall error", func() {
			form.in.GasFlowNm3h = 0
			h, _ := c.Play()
			err := h.Run(context.Background(), playback.FrameFunc(func(context.Context) error { return nil }))
			Expect(err).To(MatchError(thermal.ErrStall))
		})
	})
})
