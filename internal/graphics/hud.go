package graphics

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"oasis-map/internal/notice"
)

const (
	hudFontSize   = 20
	hudPadding    = 12
	hudLineHeight = hudFontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
)

var (
	noticeInfoColor  = rl.NewColor(30, 40, 50, 220)
	noticeErrorColor = rl.NewColor(170, 40, 40, 230)
	statusColor      = rl.NewColor(20, 30, 40, 255)
)

// HUD draws the status line, notices and the optional FPS/memory overlays.
// Overlays are off by default.
type HUD struct {
	ShowFPS      bool
	ShowMemAlloc bool
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
}

// Draw renders status lines top-left, notices bottom-center and enabled
// overlays top-right. Overlay text is only recomputed every updateInterval frames.
func (h *HUD) Draw(status []string, notices []notice.Notice) {
	for i, line := range status {
		rl.DrawText(line, hudPadding, int32(hudPadding+i*hudLineHeight), hudFontSize, statusColor)
	}
	h.drawNotices(notices)
	h.drawOverlays()
}

func (h *HUD) drawNotices(notices []notice.Notice) {
	screenW := int32(rl.GetScreenWidth())
	y := int32(rl.GetScreenHeight()) - hudPadding - int32(len(notices))*(hudLineHeight+8)
	for _, n := range notices {
		w := rl.MeasureText(n.Text, hudFontSize)
		x := (screenW - w) / 2
		bg := noticeInfoColor
		if n.Level == notice.Error {
			bg = noticeErrorColor
		}
		rl.DrawRectangle(x-8, y-4, w+16, hudLineHeight+4, bg)
		rl.DrawText(n.Text, x, y, hudFontSize, rl.White)
		y += hudLineHeight + 8
	}
}

func (h *HUD) drawOverlays() {
	h.frameCount++
	update := (h.frameCount % updateInterval) == 0
	if h.ShowFPS && h.lastFpsText == "" {
		update = true
	}
	if h.ShowMemAlloc && h.lastMemText == "" {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(hudPadding)
	if h.ShowFPS {
		if update {
			h.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRightAligned(h.lastFpsText, screenW, y)
		y += hudLineHeight
	}
	if h.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&h.lastMemStats)
			h.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(h.lastMemStats.Alloc)/(1024*1024))
		}
		drawRightAligned(h.lastMemText, screenW, y)
	}
}

func drawRightAligned(text string, screenW, y int32) {
	if text == "" {
		return
	}
	w := rl.MeasureText(text, hudFontSize)
	rl.DrawText(text, screenW-w-hudPadding, y, hudFontSize, rl.DarkGreen)
}
