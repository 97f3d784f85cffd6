package circuitbreaker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/api-gateway/internal/service"
)

var _ = Describe("Wrapper", func() {
	var (
		breakers *circuitbreaker.Registry
		wrapper  *circuitbreaker.Wrapper
	)

	newEcho := func() service.Handler {
		return service.HandlerFunc(func(ctx context.Context, req any) (any, error) {
			return req, nil
		})
	}

	newFailing := func() service.Handler {
		return service.HandlerFunc(func(ctx context.Context, req any) (any, error) {
			return nil, errors.New("downstream unavailable")
		})
	}

	BeforeEach(func() {
		breakers = circuitbreaker.NewRegistry(5, time.Minute, 100*time.Millisecond)
		wrapper = circuitbreaker.NewWrapper(breakers, 200*time.Millisecond, slog.Default())
	})

	Describe("Do", func() {
		It("should pass the handler result through unchanged", func() {
			resp, err := wrapper.Do(context.Background(), "UserService", newEcho(), "ping")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal("ping"))
		})

		It("should surface handler failures as HandlerError", func() {
			_, err := wrapper.Do(context.Background(), "FlakyService", newFailing(), "x")
			var herr *service.HandlerError
			Expect(errors.As(err, &herr)).To(BeTrue())
			Expect(herr.Service).To(Equal("FlakyService"))
		})

		It("should fail fast with CircuitOpenError after the threshold", func() {
			for i := 0; i < 5; i++ {
				_, err := wrapper.Do(context.Background(), "FlakyService", newFailing(), "x")
				var herr *service.HandlerError
				Expect(errors.As(err, &herr)).To(BeTrue())
			}

			invoked := false
			spy := service.HandlerFunc(func(ctx context.Context, req any) (any, error) {
				invoked = true
				return nil, nil
			})

			_, err := wrapper.Do(context.Background(), "FlakyService", spy, "x")
			var oerr *service.CircuitOpenError
			Expect(errors.As(err, &oerr)).To(BeTrue())
			Expect(oerr.RetryAfter).To(BeNumerically(">", 0))
			Expect(invoked).To(BeFalse())
		})

		It("should close the breaker after a successful trial", func() {
			for i := 0; i < 5; i++ {
				wrapper.Do(context.Background(), "FlakyService", newFailing(), "x")
			}
			Expect(breakers.GetBreaker("FlakyService").State()).To(Equal(circuitbreaker.StateOpen))

			time.Sleep(150 * time.Millisecond)

			resp, err := wrapper.Do(context.Background(), "FlakyService", newEcho(), "recovered")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp).To(Equal("recovered"))
			Expect(breakers.GetBreaker("FlakyService").State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should reopen the breaker when the trial fails", func() {
			for i := 0; i < 5; i++ {
				wrapper.Do(context.Background(), "FlakyService", newFailing(), "x")
			}
			time.Sleep(150 * time.Millisecond)

			_, err := wrapper.Do(context.Background(), "FlakyService", newFailing(), "x")
			var herr *service.HandlerError
			Expect(errors.As(err, &herr)).To(BeTrue())
			Expect(breakers.GetBreaker("FlakyService").State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should admit exactly one half-open trial at a time", func() {
			for i := 0; i < 5; i++ {
				wrapper.Do(context.Background(), "FlakyService", newFailing(), "x")
			}
			time.Sleep(150 * time.Millisecond)

			release := make(chan struct{})
			slow := service.HandlerFunc(func(ctx context.Context, req any) (any, error) {
				<-release
				return "ok", nil
			})

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				resp, err := wrapper.Do(context.Background(), "FlakyService", slow, "x")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp).To(Equal("ok"))
			}()

			// Let the trial reach the handler before racing it.
			Eventually(func() circuitbreaker.State {
				return breakers.GetBreaker("FlakyService").State()
			}).Should(Equal(circuitbreaker.StateHalfOpen))

			_, err := wrapper.Do(context.Background(), "FlakyService", newEcho(), "x")
			var oerr *service.CircuitOpenError
			Expect(errors.As(err, &oerr)).To(BeTrue())

			close(release)
			wg.Wait()
		})

		It("should report a timeout as TimeoutError and count it as failure", func() {
			wrapper = circuitbreaker.NewWrapper(breakers, 30*time.Millisecond, slog.Default())
			stuck := service.HandlerFunc(func(ctx context.Context, req any) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

			_, err := wrapper.Do(context.Background(), "SlowService", stuck, "x")
			var terr *service.TimeoutError
			Expect(errors.As(err, &terr)).To(BeTrue())
			Expect(terr.Service).To(Equal("SlowService"))
			Expect(breakers.GetBreaker("SlowService").Snapshot().Failures).To(Equal(1))
		})

		It("should count caller cancellation as neither success nor failure", func() {
			ctx, cancel := context.WithCancel(context.Background())
			stuck := service.HandlerFunc(func(ctx context.Context, req any) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()

			_, err := wrapper.Do(ctx, "SlowService", stuck, "x")
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())

			snap := breakers.GetBreaker("SlowService").Snapshot()
			Expect(snap.State).To(Equal(circuitbreaker.StateClosed))
			Expect(snap.Failures).To(Equal(0))
		})
	})
})
