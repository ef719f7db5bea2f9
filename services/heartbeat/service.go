// Package heartbeat logs a periodic one-line health summary. The interval
// follows the retained config/heartbeat section and can change live.
package heartbeat

import (
	"context"
	"sync/atomic"
	"time"

	"ledstack-go/bus"
	"ledstack-go/mailbox"
	"ledstack-go/services/config"
	"ledstack-go/types"
	"ledstack-go/x/logx"
	"ledstack-go/x/strconvx"
)

var log = logx.Tag("hb")

// Clock is what the summary reads the time and power state from.
type Clock interface {
	CurrentTime() types.TimeOfDay
	PowerStatus() types.PowerState
}

// Box is any mailbox whose counters are reported.
type Box interface {
	Name() string
	Stats() mailbox.Stats
}

type Service struct {
	clock    Clock
	boxes    []Box
	interval atomic.Int64
	beats    atomic.Uint32
}

func New(clock Clock, boxes ...Box) *Service {
	s := &Service{clock: clock, boxes: boxes}
	s.interval.Store(int64(30 * time.Second))
	return s
}

// Interval is the current tick period.
func (s *Service) Interval() time.Duration { return time.Duration(s.interval.Load()) }

// Beats counts summaries emitted.
func (s *Service) Beats() uint32 { return s.beats.Load() }

// Line renders one summary.
func (s *Service) Line() string {
	b := make([]byte, 0, 96)
	b = append(b, s.clock.CurrentTime().String()...)
	b = append(b, ' ')
	b = append(b, s.clock.PowerStatus().String()...)
	for _, bx := range s.boxes {
		st := bx.Stats()
		b = append(b, ' ')
		b = append(b, bx.Name()...)
		b = append(b, '=')
		b = append(b, strconvx.Itoa(st.Depth)...)
		b = append(b, '/')
		b = append(b, strconvx.Itoa(st.Capacity)...)
		b = append(b, " hw="...)
		b = append(b, strconvx.Itoa(st.HighWater)...)
		b = append(b, " drop="...)
		b = append(b, strconvx.FormatUint(uint64(st.Dropped+st.TimedOut), 10)...)
	}
	b = append(b, " logdrops="...)
	b = append(b, strconvx.FormatUint(uint64(logx.Default().Drops()), 10)...)
	return string(b)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(config.Topic("heartbeat"))
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.Interval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("stopping")
			return
		case <-tick.C:
			s.beats.Add(1)
			log.Println(s.Line())
		case msg := <-cfgSub.Channel():
			hb, ok := msg.Payload.(config.Heartbeat)
			if !ok || hb.Interval <= 0 || hb.Interval == s.Interval() {
				continue
			}
			s.interval.Store(int64(hb.Interval))
			tick.Reset(hb.Interval)
			log.Println("interval set to", hb.Interval.String())
		}
	}
}

// Start runs the service until ctx is done.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
