package cache

import (
	"context"
	"time"

	"github.com/patrick-ksn/dms/pkg/logger"
	"github.com/patrick-ksn/dms/pkg/metrics"
)

// Sweeper unconditionally evicts every registered cache on a fixed period.
// It backstops the mutation-triggered evictions: even if an invalidation path
// is ever missed, staleness is bounded by one sweep interval.
type Sweeper struct {
	interval time.Duration
	caches   []Cache
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(interval time.Duration, caches ...Cache) *Sweeper {
	return &Sweeper{
		interval: interval,
		caches:   caches,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// Invalidate evicts every entry of c after a mutation on its entity type.
// Same entry point the sweeper uses, different trigger label.
func Invalidate(ctx context.Context, c Cache) error {
	if err := c.EvictAll(ctx); err != nil {
		return err
	}
	logger.Debugf("evict cache %s", c.Name())
	metrics.CacheEvictions.WithLabelValues(c.Name(), "mutation").Inc()
	return nil
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, c := range s.caches {
		if err := c.EvictAll(ctx); err != nil {
			logger.Warnf("cache sweep: evict %s failed: %v", c.Name(), err)
			continue
		}
		logger.Debugf("evict cache %s", c.Name())
		metrics.CacheEvictions.WithLabelValues(c.Name(), "sweep").Inc()
	}
}
