// Package heartbeat publishes a periodic liveness beat with memory figures.
package heartbeat

import (
	"context"
	"runtime"
	"time"

	"gametiger-go/bus"
	"gametiger-go/types"
	"gametiger-go/x/logx"
)

var (
	TopicBeat   = bus.Topic{"board", "heartbeat"}
	TopicConfig = bus.Topic{"config", "heartbeat"} // payload: time.Duration
)

const DefaultInterval = 5 * time.Second

var log = logx.New("heartbeat")

type Service struct {
	Interval time.Duration // DefaultInterval when zero
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(TopicConfig)
	defer conn.Unsubscribe(cfgSub)

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	start := time.Now()
	var seq uint32
	for {
		select {
		case <-ctx.Done():
			log.Println("stopping")
			return
		case now := <-tick.C:
			seq++
			conn.Publish(&bus.Message{Topic: TopicBeat, Payload: beat(seq, now.Sub(start))})
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				log.Println("connection closed")
				return
			}
			if d, ok := msg.Payload.(time.Duration); ok && d > 0 {
				tick.Reset(d)
				log.Println("interval set to", d)
			}
		}
	}
}

func beat(seq uint32, up time.Duration) types.Heartbeat {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return types.Heartbeat{
		Seq:       seq,
		UptimeMS:  up.Milliseconds(),
		HeapAlloc: uint32(ms.Alloc),
		HeapInuse: uint32(ms.HeapInuse),
		Mallocs:   uint32(ms.Mallocs),
		Frees:     uint32(ms.Frees),
	}
}

// Start runs the heartbeat until ctx is done.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
