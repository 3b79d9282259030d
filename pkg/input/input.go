// Package input translates key presses into camera commands.
package input

import (
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/roam/pkg/render"
)

// Command is one discrete camera or UI action.
type Command int

const (
	None Command = iota

	MoveForward
	MoveBack
	MoveLeft
	MoveRight
	MoveUp
	MoveDown

	LookUp
	LookDown
	LookLeft
	LookRight

	RollLeft
	RollRight

	FocalIn
	FocalOut

	DollyIn
	DollyOut

	ToggleWireframe
	ToggleHUD
	Exit
)

// Per-keypress step sizes.
const (
	MoveStep  = 0.25
	LookStep  = 0.05 // radians
	RollStep  = 0.05 // radians
	FocalStep = 0.1
	DollyStep = 0.25
)

type binding struct {
	keys []string
	cmd  Command
}

// bindings is checked in order; earlier entries win on overlap.
var bindings = []binding{
	{[]string{"w"}, MoveForward},
	{[]string{"s"}, MoveBack},
	{[]string{"a"}, MoveLeft},
	{[]string{"d"}, MoveRight},
	{[]string{"r"}, MoveUp},
	{[]string{"f"}, MoveDown},

	{[]string{"i", "up"}, LookUp},
	{[]string{"k", "down"}, LookDown},
	{[]string{"j", "left"}, LookLeft},
	{[]string{"l", "right"}, LookRight},

	{[]string{"q"}, RollLeft},
	{[]string{"e"}, RollRight},

	{[]string{"+", "="}, FocalIn},
	{[]string{"-", "_"}, FocalOut},

	{[]string{"z"}, DollyIn},
	{[]string{"x"}, DollyOut},

	{[]string{"tab"}, ToggleWireframe},
	{[]string{"?", "shift+/"}, ToggleHUD},
	{[]string{"escape", "ctrl+c"}, Exit},
}

// Translate maps a key press to a command, or None for unbound keys.
func Translate(ev uv.KeyPressEvent) Command {
	for _, b := range bindings {
		if ev.MatchString(b.keys...) {
			return b.cmd
		}
	}
	return None
}

// Apply runs a camera command against the camera and reports whether it
// was a camera command. UI commands (toggles, Exit, None) leave the
// camera untouched and return false; the caller handles those.
func Apply(cmd Command, cam *render.Camera) bool {
	switch cmd {
	case MoveForward:
		cam.Move(0, 0, MoveStep)
	case MoveBack:
		cam.Move(0, 0, -MoveStep)
	case MoveLeft:
		cam.Move(-MoveStep, 0, 0)
	case MoveRight:
		cam.Move(MoveStep, 0, 0)
	case MoveUp:
		cam.Move(0, MoveStep, 0)
	case MoveDown:
		cam.Move(0, -MoveStep, 0)

	case LookUp:
		cam.LookUp(LookStep)
	case LookDown:
		cam.LookUp(-LookStep)
	case LookLeft:
		cam.LookRight(-LookStep)
	case LookRight:
		cam.LookRight(LookStep)

	case RollLeft:
		cam.Roll(-RollStep)
	case RollRight:
		cam.Roll(RollStep)

	case FocalIn:
		cam.AdjustFocal(FocalStep)
	case FocalOut:
		cam.AdjustFocal(-FocalStep)

	case DollyIn:
		cam.DollyZoom(DollyStep)
	case DollyOut:
		cam.DollyZoom(-DollyStep)

	default:
		return false
	}
	return true
}

// String names a command for the HUD.
func (c Command) String() string {
	switch c {
	case MoveForward:
		return "forward"
	case MoveBack:
		return "back"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case LookUp:
		return "look up"
	case LookDown:
		return "look down"
	case LookLeft:
		return "look left"
	case LookRight:
		return "look right"
	case RollLeft:
		return "roll left"
	case RollRight:
		return "roll right"
	case FocalIn:
		return "focal in"
	case FocalOut:
		return "focal out"
	case DollyIn:
		return "dolly in"
	case DollyOut:
		return "dolly out"
	case ToggleWireframe:
		return "toggle wireframe"
	case ToggleHUD:
		return "toggle hud"
	case Exit:
		return "exit"
	default:
		return "none"
	}
}
