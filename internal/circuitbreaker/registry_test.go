package circuitbreaker_test

import (
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
)

var _ = Describe("Registry", func() {
	var registry *circuitbreaker.Registry

	BeforeEach(func() {
		registry = circuitbreaker.NewRegistry(5, time.Minute, 30*time.Second)
	})

	Describe("GetBreaker", func() {
		It("should create a new breaker for an unknown service", func() {
			cb := registry.GetBreaker("UserService")
			Expect(cb).NotTo(BeNil())
			Expect(cb.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should return the same breaker for the same service", func() {
			cb1 := registry.GetBreaker("UserService")
			cb2 := registry.GetBreaker("UserService")
			Expect(cb1).To(BeIdenticalTo(cb2))
		})

		It("should return different breakers for different services", func() {
			cb1 := registry.GetBreaker("UserService")
			cb2 := registry.GetBreaker("ProductService")
			Expect(cb1).NotTo(BeIdenticalTo(cb2))
		})

		It("should use registry threshold for new breakers", func() {
			registry = circuitbreaker.NewRegistry(2, time.Minute, 100*time.Millisecond)
			cb := registry.GetBreaker("UserService")

			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))
		})

		It("should use registry cooldown for new breakers", func() {
			registry = circuitbreaker.NewRegistry(2, time.Minute, 50*time.Millisecond)
			cb := registry.GetBreaker("UserService")

			cb.RecordFailure()
			cb.RecordFailure()
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))

			time.Sleep(60 * time.Millisecond)
			allowed, _ := cb.Allow()
			Expect(allowed).To(BeTrue())
			Expect(cb.State()).To(Equal(circuitbreaker.StateHalfOpen))
		})
	})

	Describe("Remove", func() {
		It("should discard breaker state so the next breaker starts closed", func() {
			cb := registry.GetBreaker("FlakyService")
			for i := 0; i < 5; i++ {
				cb.RecordFailure()
			}
			Expect(cb.State()).To(Equal(circuitbreaker.StateOpen))

			registry.Remove("FlakyService")

			fresh := registry.GetBreaker("FlakyService")
			Expect(fresh).NotTo(BeIdenticalTo(cb))
			Expect(fresh.State()).To(Equal(circuitbreaker.StateClosed))
		})

		It("should tolerate removing an untracked service", func() {
			Expect(func() { registry.Remove("ghost") }).NotTo(Panic())
		})
	})

	Describe("Stats", func() {
		It("should report a snapshot per tracked service", func() {
			registry.GetBreaker("UserService")
			cb := registry.GetBreaker("FlakyService")
			for i := 0; i < 5; i++ {
				cb.RecordFailure()
			}

			stats := registry.Stats()
			Expect(stats).To(HaveLen(2))
			Expect(stats["UserService"].State).To(Equal(circuitbreaker.StateClosed))
			Expect(stats["FlakyService"].State).To(Equal(circuitbreaker.StateOpen))
			Expect(stats["FlakyService"].Failures).To(Equal(5))
		})
	})

	Describe("Concurrent access", func() {
		It("should handle concurrent GetBreaker calls safely", func() {
			const goroutines = 100
			const servicesPerGoroutine = 10

			var wg sync.WaitGroup
			wg.Add(goroutines)

			for i := 0; i < goroutines; i++ {
				go func(id int) {
					defer GinkgoRecover()
					defer wg.Done()
					for j := 0; j < servicesPerGoroutine; j++ {
						name := fmt.Sprintf("service-%d", j)
						cb := registry.GetBreaker(name)
						Expect(cb).NotTo(BeNil())
					}
				}(i)
			}

			wg.Wait()
			Expect(registry.Stats()).To(HaveLen(servicesPerGoroutine))
		})
	})
})
