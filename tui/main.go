// Package tui shows a running session from above in the terminal and turns
// key presses into session commands.
package tui

import (
	"context"
	"fmt"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/lin71008/RollerCoasters/notify"
	"github.com/lin71008/RollerCoasters/scenery"
	"github.com/lin71008/RollerCoasters/session"
	"go.uber.org/zap"
)

const statusHeight = 6

type screen struct {
	canvas *ui.Canvas
	status *widgets.Paragraph
	keys   *widgets.Paragraph
}

func newScreen() *screen {
	s := &screen{
		canvas: ui.NewCanvas(),
		status: widgets.NewParagraph(),
		keys:   widgets.NewParagraph(),
	}
	s.canvas.Title = "track (top view)"
	s.status.Title = "status"
	s.status.Text = "waiting for session"
	s.keys.Border = false
	s.keys.Text = help
	w, h := ui.TerminalDimensions()
	s.layout(w, h)
	return s
}

func (s *screen) layout(w, h int) {
	s.canvas.SetRect(0, 0, w, h-statusHeight-1)
	s.status.SetRect(0, h-statusHeight-1, w, h-1)
	s.keys.SetRect(0, h-1, w, h)
}

// Main runs the terminal view until q is pressed or ctx is done.
func Main(ctx context.Context, snaps *notify.Multiplexer[session.Snapshot], requests chan<- session.Request) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("termui init: %w", err)
	}
	defer ui.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := newScreen()
	ch := make(chan session.Snapshot, 1)
	snaps.Subscribe("tui", ch)
	defer snaps.Unsubscribe(ch)

	// commands are forwarded from one goroutine so they arrive in key order
	cmds := make(chan session.Command, 16)
	errs := make(chan error, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cmd := <-cmds:
				if err := session.Send(ctx, requests, cmd); err != nil {
					select {
					case errs <- err:
					default:
					}
				}
			}
		}
	}()

	snap, _ := snaps.Current()
	var scene scenery.Scene
	var lastErr error
	render := func() {
		if scene.Seed != snap.Seed || scene.Stones == nil {
			scene = scenery.Place(snap.Seed, snap.Extent)
		}
		if snap.Track.Len() > 0 {
			drawScene(s.canvas, snap, scene)
			s.status.Text = statusText(snap, lastErr)
		}
		ui.Render(s.canvas, s.status, s.keys)
	}
	render()

	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap = <-ch:
			render()
		case err := <-errs:
			lastErr = err
			render()
		case e := <-events:
			switch {
			case e.ID == "q" || e.ID == "<C-c>":
				return nil
			case e.Type == ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				s.layout(payload.Width, payload.Height)
				ui.Clear()
				render()
			case e.Type == ui.KeyboardEvent:
				cmd, ok := keyCommand(e.ID, snap)
				if !ok {
					continue
				}
				lastErr = nil
				select {
				case cmds <- cmd:
				default:
					zap.S().Warnf("tui: dropping %s, too many pending commands", cmd)
				}
			}
		}
	}
}
