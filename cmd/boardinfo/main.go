//go:build !rp2040

// Command boardinfo prints the GameTiger pin table and the decoded display
// init sequence. With -bringup it also runs the display bring-up against the
// in-memory backend and reports the result.
package main

import (
	"flag"
	"os"
	"strings"

	"gametiger-go/drivers/busdisplay"
	"gametiger-go/pins"
	"gametiger-go/services/board"
	"gametiger-go/x/logx"
)

var log = logx.New("")

func main() {
	showPins := flag.Bool("pins", true, "print the pin table")
	showSeq := flag.Bool("seq", true, "print the decoded init sequence")
	bringup := flag.Bool("bringup", false, "run the display bring-up on the in-memory backend")
	filter := flag.String("filter", "", "only print pin names with this prefix")
	flag.Parse()

	log.Println("board", pins.BoardID)

	if *showPins {
		for _, e := range pins.Entries() {
			if !strings.HasPrefix(e.Name, *filter) {
				continue
			}
			switch e.Kind {
			case pins.KindDisplay:
				log.Println(e.Name, "display slot")
				continue
			case pins.KindBoardID:
				log.Println(e.Name, pins.BoardID)
				continue
			}
			log.Println(e.Name, e.Pin.String())
		}
	}

	if *showSeq {
		recs, err := busdisplay.Parse(board.InitSequence())
		if err != nil {
			log.Println("init sequence:", err)
			os.Exit(1)
		}
		for _, r := range recs {
			log.Println(logx.Hex(r.Cmd), r.Data, r.Delay)
		}
	}

	if *bringup {
		if err := board.Init(); err != nil {
			log.Println("bring-up failed:", err)
			os.Exit(1)
		}
		d, _ := board.Display()
		info := d.Info()
		log.Println("display", info.Width, info.Height, "rotation", info.Rotation, "fps", info.FramesPerSecond)
		if bi, ok := board.Default.BusInfo(); ok {
			log.Println("bus", bi.ID, "baud", bi.BaudRate, "mode", bi.Polarity<<1|bi.Phase)
		}
	}
}
