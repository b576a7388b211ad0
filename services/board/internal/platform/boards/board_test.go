package boards

import "testing"

func TestRP2040SPIMux(t *testing.T) {
	cases := []struct {
		id            string
		sck, sdo, sdi int
		want          bool
	}{
		{"spi0", 2, 3, 0, true}, // GameTiger LCD wiring
		{"spi0", 2, 3, -1, true},
		{"spi0", 18, 19, 16, true},
		{"spi1", 10, 11, 12, true},
		{"spi1", 26, 27, 24, true},
		{"spi1", 26, 27, 25, false},
		{"spi0", 3, 2, 0, false},
		{"spi1", 2, 3, 0, false},
		{"spi2", 2, 3, 0, false},
	}
	for _, c := range cases {
		if got := RP2040.CanSPI(c.id, c.sck, c.sdo, c.sdi); got != c.want {
			t.Errorf("CanSPI(%s,%d,%d,%d) = %v", c.id, c.sck, c.sdo, c.sdi, got)
		}
	}
}

func TestRP2040UARTMux(t *testing.T) {
	if !RP2040.CanUART("uart0", 12, 13) {
		t.Fatal("uart0 on GPIO12/13 should be valid")
	}
	if RP2040.CanUART("uart0", 4, 5) {
		t.Fatal("GPIO4/5 belong to uart1")
	}
}

func TestInRange(t *testing.T) {
	if !RP2040.InRange(0) || !RP2040.InRange(29) || RP2040.InRange(30) || RP2040.InRange(-1) {
		t.Fatal("range check wrong")
	}
}
