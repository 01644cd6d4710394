package tui

import (
	"fmt"
	"image"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

func newImageView(title string, img image.Image, w, h int) *widgets.Image {
	v := widgets.NewImage(img)
	v.Title = title + " (any key closes)"
	v.SetRect(0, 0, w, h)
	return v
}

// ShowImage fills the terminal with img until a key is pressed.
func ShowImage(title string, img image.Image) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("termui init: %w", err)
	}
	defer ui.Close()
	w, h := ui.TerminalDimensions()
	v := newImageView(title, img, w, h)
	ui.Render(v)
	for e := range ui.PollEvents() {
		switch e.Type {
		case ui.KeyboardEvent:
			return nil
		case ui.ResizeEvent:
			payload := e.Payload.(ui.Resize)
			v.SetRect(0, 0, payload.Width, payload.Height)
			ui.Clear()
			ui.Render(v)
		}
	}
	return nil
}
