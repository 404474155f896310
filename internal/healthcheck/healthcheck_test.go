package healthcheck_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tickethub/rpc-failover/internal/circuitbreaker"
	"github.com/tickethub/rpc-failover/internal/endpoint"
	"github.com/tickethub/rpc-failover/internal/healthcheck"
	"github.com/tickethub/rpc-failover/internal/rpc"
)

type fakeConn struct {
	url    string
	slot   func(ctx context.Context) (uint64, error)
	probes *atomic.Int64
}

func (f *fakeConn) URL() string { return f.url }

func (f *fakeConn) Do(ctx context.Context, payload []byte) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeConn) Call(ctx context.Context, method string, params any, result any) error {
	return errors.New("not implemented")
}

func (f *fakeConn) Slot(ctx context.Context) (uint64, error) {
	if f.probes != nil {
		f.probes.Add(1)
	}
	return f.slot(ctx)
}

var _ = Describe("Watch", func() {
	var (
		log      *slog.Logger
		ctx      context.Context
		cancel   context.CancelFunc
		e        *endpoint.Endpoint
		probes   atomic.Int64
		probeErr *atomic.Value
	)

	factory := func(url string, cfg rpc.Config) rpc.Connection {
		return &fakeConn{
			url:    url,
			probes: &probes,
			slot: func(ctx context.Context) (uint64, error) {
				if err, ok := probeErr.Load().(error); ok && err != nil {
					return 0, err
				}
				return 42, nil
			},
		}
	}

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
		ctx, cancel = context.WithCancel(context.Background())
		probes.Store(0)
		probeErr = &atomic.Value{}
		cb := circuitbreaker.NewCircuitBreaker(5, time.Second)
		e = endpoint.New("https://rpc-1.example.com", 2, cb, log, nil)
	})

	AfterEach(func() {
		cancel()
	})

	It("should recover an unhealthy endpoint on a successful probe", func() {
		e.RecordFailure()
		e.RecordFailure()
		Expect(e.IsHealthy()).To(BeFalse())

		go healthcheck.Watch(ctx, []*endpoint.Endpoint{e}, 20*time.Millisecond, factory, rpc.Config{}, log)

		Eventually(e.IsHealthy, time.Second).Should(BeTrue())
		Expect(e.ConsecutiveFailures()).To(BeZero())
	})

	It("should keep probing healthy endpoints", func() {
		go healthcheck.Watch(ctx, []*endpoint.Endpoint{e}, 20*time.Millisecond, factory, rpc.Config{}, log)

		Eventually(func() int64 { return probes.Load() }, time.Second).Should(BeNumerically(">=", 3))
	})

	It("should not touch the failure counter on probe failure", func() {
		probeErr.Store(errors.New("connection refused"))
		e.RecordFailure()

		go healthcheck.Watch(ctx, []*endpoint.Endpoint{e}, 20*time.Millisecond, factory, rpc.Config{}, log)

		Eventually(func() int64 { return probes.Load() }, time.Second).Should(BeNumerically(">=", 2))
		Expect(e.ConsecutiveFailures()).To(Equal(1))
		Expect(e.IsHealthy()).To(BeTrue())
	})

	It("should stop when the context is cancelled", func() {
		go healthcheck.Watch(ctx, []*endpoint.Endpoint{e}, 20*time.Millisecond, factory, rpc.Config{}, log)

		time.Sleep(50 * time.Millisecond)
		cancel()
		time.Sleep(30 * time.Millisecond)
		before := probes.Load()
		time.Sleep(60 * time.Millisecond)

		Expect(probes.Load()).To(Equal(before))
	})
})
