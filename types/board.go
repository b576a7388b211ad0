package types

// ---- Board bring-up state ----

// BoardLevel is the coarse bring-up state of the board.
type BoardLevel string

const (
	BoardIdle   BoardLevel = "idle"
	BoardReady  BoardLevel = "ready"
	BoardFailed BoardLevel = "failed"
)

type BoardState struct {
	Board  string     `json:"board"`
	Level  BoardLevel `json:"level"`
	Status string     `json:"status,omitempty"` // short error code when failed
}

// ---- Display bus ----

type BusInfo struct {
	ID       string `json:"id"` // e.g. "spi0"
	SCK      int    `json:"sck"`
	SDO      int    `json:"sdo"`
	SDI      int    `json:"sdi"`
	DC       int    `json:"dc"`
	CS       int    `json:"cs"`
	RST      int    `json:"rst"` // -1 when unwired
	BaudRate uint32 `json:"baud"`
	Polarity uint8  `json:"polarity"`
	Phase    uint8  `json:"phase"`
}

// ---- Display surface ----

type DisplayInfo struct {
	Width           uint16  `json:"width"`
	Height          uint16  `json:"height"`
	Rotation        uint16  `json:"rotation"`
	ColorDepth      uint8   `json:"color_depth"`
	AutoRefresh     bool    `json:"auto_refresh"`
	FramesPerSecond uint16  `json:"fps"`
	Brightness      float32 `json:"brightness"`
	HasBacklight    bool    `json:"has_backlight"`
	BacklightPWMHz  uint32  `json:"backlight_pwm_hz,omitempty"` // inert without a backlight pin
}

// ---- Heartbeat ----

type Heartbeat struct {
	Seq       uint32 `json:"seq"`
	UptimeMS  int64  `json:"uptime_ms"`
	HeapAlloc uint32 `json:"heap_alloc"`
	HeapInuse uint32 `json:"heap_inuse"`
	Mallocs   uint32 `json:"mallocs"`
	Frees     uint32 `json:"frees"`
}
