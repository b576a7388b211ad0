//go:build !rp2040

// Command benchdisplay drives a GameTiger panel wired to a Linux SBC, using
// the same bring-up as the firmware.
package main

import (
	"context"
	"flag"
	"image/color"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"gametiger-go/errcode"
	"gametiger-go/services/board"
	"gametiger-go/x/logx"
)

var log = logx.New("bench")

func main() {
	port := flag.String("spi", "", "spidev port for spi0 (empty picks the first)")
	pinMap := flag.String("pins", "", "comma list of board=host pin names, e.g. 0=GPIO25,1=GPIO8,4=GPIO24")
	hold := flag.Duration("hold", 10*time.Second, "how long to keep refreshing")
	flag.Parse()

	names, err := parsePinMap(*pinMap)
	if err != nil {
		log.Println(err)
		os.Exit(2)
	}
	w := board.BenchWiring{Ports: map[string]string{"spi0": *port}}
	if len(names) > 0 {
		w.PinName = func(n int) string {
			if s, ok := names[n]; ok {
				return s
			}
			return ""
		}
	}

	slot, err := board.InitBench(w)
	if err != nil {
		log.Println("bring-up failed:", err)
		os.Exit(1)
	}
	disp, _ := slot.Display()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, *hold)
	defer cancel()

	go func() {
		colors := []color.RGBA{
			{R: 0xFF, A: 0xFF}, {G: 0xFF, A: 0xFF}, {B: 0xFF, A: 0xFF},
		}
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for i := 0; ; i++ {
			disp.FillScreen(colors[i%len(colors)])
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
		}
	}()

	if err := disp.Run(ctx); err != nil && ctx.Err() == nil {
		log.Println("refresh:", err)
		os.Exit(1)
	}
	log.Println("done")
}

// parsePinMap reads "n=NAME,n=NAME".
func parsePinMap(s string) (map[int]string, error) {
	out := map[int]string{}
	if s == "" {
		return out, nil
	}
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, "=")
		n, err := strconv.Atoi(k)
		if !ok || v == "" || err != nil || n < 0 {
			return nil, errcode.New(errcode.InvalidParams, "pins", kv)
		}
		out[n] = v
	}
	return out, nil
}
