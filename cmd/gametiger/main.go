//go:build rp2040

package main

import (
	"context"
	"image/color"
	"time"

	"gametiger-go/bus"
	"gametiger-go/pins"
	"gametiger-go/services/board"
	"gametiger-go/services/heartbeat"
	"gametiger-go/types"
	"gametiger-go/x/logx"
)

var log = logx.New("main")

func main() {
	// Board bring-up comes before anything else touches the hardware.
	initErr := board.Init()

	// Allow the console to settle before we print.
	time.Sleep(500 * time.Millisecond)
	if con, err := board.Console(); err == nil {
		logx.SetOutput(con)
	} else {
		println("[main] console unavailable:", err.Error())
	}
	log.Println("boot", pins.BoardID)
	if initErr != nil {
		halt(initErr)
	}

	b := bus.NewBus(8)
	mon := b.NewConnection("monitor").Subscribe(bus.Topic{"board", bus.Tail})
	go func() {
		for m := range mon.Channel() {
			switch p := m.Payload.(type) {
			case types.BoardState:
				log.Println("<-", m.Topic.String(), string(p.Level), p.Status)
			case types.Heartbeat:
				log.Println("heartbeat", p.Seq, "alloc:", p.HeapAlloc, "heapInuse:", p.HeapInuse,
					"mallocs:", p.Mallocs, "frees:", p.Frees)
			default:
				log.Println("<-", m.Topic.String())
			}
		}
	}()
	board.Default.Attach(b.NewConnection("board"))

	disp, _ := board.Display()

	// Splash: clear to black, a tiger-orange band across the middle.
	disp.FillScreen(color.RGBA{A: 0xFF})
	w, h := disp.Size()
	_ = disp.FillRectangle(0, h/2-8, w, 16, color.RGBA{R: 0xFF, G: 0x80, A: 0xFF})

	ctx := context.Background()
	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	if err := disp.Run(ctx); err != nil {
		halt(err)
	}
}

// halt parks the board after a fatal error; without a display there is
// nothing else to do.
func halt(err error) {
	for {
		log.Println("fatal:", err)
		time.Sleep(5 * time.Second)
	}
}
