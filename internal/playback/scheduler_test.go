package playback_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cooldown/internal/playback"
)

var _ = Describe("RateScheduler", func() {
	It("paces frames", func() {
		s := playback.NewRateScheduler(100)
		start := time.Now()
		for i := 0; i < 5; i++ {
			Expect(s.Frame(context.Background())).To(Succeed())
		}
		Expect(time.Since(start)).To(BeNumerically(">=", 30*time.Millisecond))
	})

	It("gives up when the context is cancelled", func() {
		s := playback.NewRateScheduler(0.001)
		Expect(s.Frame(context.Background())).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(s.Frame(ctx)).NotTo(Succeed())
	})

	It("drives a controller handle", func() {
		c := playback.New(&staticForm{in: reference()}, playback.WithStepSize(600), playback.WithSpeed(4))
		h, err := c.Play()
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		Expect(h.Run(ctx, playback.NewRateScheduler(1000))).To(Succeed())
		Expect(c.Phase()).To(Equal(playback.Paused))
	})
})
