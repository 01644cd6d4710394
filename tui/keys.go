package tui

import (
	"github.com/lin71008/RollerCoasters/session"
	"github.com/lin71008/RollerCoasters/track"
)

const (
	moveStep   = 1.0
	rotateStep = 10.0
)

const help = "space run  ←/→ step  a/d add/delete  [/] select  esc deselect  ↑/↓ y  x/X z/Z move  u/U o/O rotate  m mode  +/- speed  l arc  p physics  c/C cars  s save  r reset  n reseed  q quit"

// keyCommand maps a termui key event ID to a session command.
func keyCommand(id string, snap session.Snapshot) (session.Command, bool) {
	n := len(snap.Track.Points)
	if n == 0 && (id == "]" || id == "[") {
		return nil, false
	}
	switch id {
	case "<Space>":
		return session.SetRunning{On: !snap.Running}, true
	case "<Right>":
		return session.Step{Direction: 1}, true
	case "<Left>":
		return session.Step{Direction: -1}, true
	case "a":
		return session.AddPoint{}, true
	case "d":
		return session.DeletePoint{}, true
	case "]":
		return session.Select{Index: (snap.Selected + 1) % n}, true
	case "[":
		if snap.Selected <= 0 {
			return session.Select{Index: n - 1}, true
		}
		return session.Select{Index: snap.Selected - 1}, true
	case "<Escape>":
		return session.Select{Index: session.NoSelection}, true
	case "<Up>":
		return session.MovePoint{Axis: track.AxisY, Delta: moveStep}, true
	case "<Down>":
		return session.MovePoint{Axis: track.AxisY, Delta: -moveStep}, true
	case "x":
		return session.MovePoint{Axis: track.AxisX, Delta: moveStep}, true
	case "X":
		return session.MovePoint{Axis: track.AxisX, Delta: -moveStep}, true
	case "z":
		return session.MovePoint{Axis: track.AxisZ, Delta: moveStep}, true
	case "Z":
		return session.MovePoint{Axis: track.AxisZ, Delta: -moveStep}, true
	case "u":
		return session.RotatePoint{Axis: track.AxisX, Degrees: rotateStep}, true
	case "U":
		return session.RotatePoint{Axis: track.AxisX, Degrees: -rotateStep}, true
	case "o":
		return session.RotatePoint{Axis: track.AxisZ, Degrees: rotateStep}, true
	case "O":
		return session.RotatePoint{Axis: track.AxisZ, Degrees: -rotateStep}, true
	case "m":
		return session.SetMode{Mode: snap.Mode.Next()}, true
	case "+", "=":
		return session.SetSpeed{Speed: snap.Speed + 1}, true
	case "-":
		return session.SetSpeed{Speed: snap.Speed - 1}, true
	case "l":
		return session.SetArcLength{On: !snap.ArcLength}, true
	case "p":
		return session.SetPhysics{On: !snap.Physics}, true
	case "c":
		return session.AddCar{}, true
	case "C":
		return session.RemoveCar{}, true
	case "s":
		return session.SaveTrack{}, true
	case "r":
		return session.Reset{}, true
	case "n":
		return session.Reseed{}, true
	}
	return nil, false
}
