package input

import (
	"math"
	"testing"

	"github.com/taigrr/roam/pkg/math3d"
	"github.com/taigrr/roam/pkg/render"
)

func TestApplyMoveCommands(t *testing.T) {
	tests := []struct {
		cmd  Command
		want math3d.Vec3
	}{
		{MoveForward, math3d.V3(0, 0, -MoveStep)},
		{MoveBack, math3d.V3(0, 0, MoveStep)},
		{MoveLeft, math3d.V3(-MoveStep, 0, 0)},
		{MoveRight, math3d.V3(MoveStep, 0, 0)},
		{MoveUp, math3d.V3(0, MoveStep, 0)},
		{MoveDown, math3d.V3(0, -MoveStep, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.String(), func(t *testing.T) {
			cam := render.NewCamera()
			if !Apply(tt.cmd, cam) {
				t.Fatal("Apply() = false for a camera command")
			}
			if cam.Position.Sub(tt.want).Len() > 1e-12 {
				t.Errorf("position = %v, want %v", cam.Position, tt.want)
			}
		})
	}
}

func TestApplyLookCancels(t *testing.T) {
	cam := render.NewCamera()
	fwd := cam.Forward

	Apply(LookLeft, cam)
	if cam.Forward.Sub(fwd).Len() < 1e-6 {
		t.Fatal("look left did not turn the camera")
	}
	Apply(LookRight, cam)
	if cam.Forward.Sub(fwd).Len() > 1e-9 {
		t.Errorf("opposite looks should cancel: %v vs %v", cam.Forward, fwd)
	}

	Apply(LookUp, cam)
	Apply(LookDown, cam)
	if cam.Forward.Sub(fwd).Len() > 1e-9 {
		t.Errorf("opposite pitches should cancel: %v vs %v", cam.Forward, fwd)
	}
}

func TestApplyRollCancels(t *testing.T) {
	cam := render.NewCamera()
	up := cam.Up

	Apply(RollLeft, cam)
	if cam.Up.Sub(up).Len() < 1e-6 {
		t.Fatal("roll left did not rotate the camera")
	}
	Apply(RollRight, cam)
	if cam.Up.Sub(up).Len() > 1e-9 {
		t.Errorf("opposite rolls should cancel: %v vs %v", cam.Up, up)
	}
}

func TestApplyFocal(t *testing.T) {
	cam := render.NewCamera()
	focal := cam.FocalLength

	Apply(FocalIn, cam)
	if math.Abs(cam.FocalLength-(focal+FocalStep)) > 1e-12 {
		t.Errorf("focal = %v after focal in", cam.FocalLength)
	}
	Apply(FocalOut, cam)
	if math.Abs(cam.FocalLength-focal) > 1e-12 {
		t.Errorf("focal = %v after round trip, want %v", cam.FocalLength, focal)
	}
}

func TestApplyDollyRoundTrip(t *testing.T) {
	cam := render.NewCamera()
	pos, focal := cam.Position, cam.FocalLength

	Apply(DollyIn, cam)
	if cam.Position.Sub(pos).Len() < 1e-9 {
		t.Fatal("dolly in did not move the camera")
	}
	Apply(DollyOut, cam)

	if cam.Position.Sub(pos).Len() > 1e-9 || math.Abs(cam.FocalLength-focal) > 1e-9 {
		t.Errorf("dolly round trip drifted: pos %v focal %v", cam.Position, cam.FocalLength)
	}
}

func TestApplyUICommandsUntouched(t *testing.T) {
	for _, cmd := range []Command{None, ToggleWireframe, ToggleHUD, Exit} {
		cam := render.NewCamera()
		if Apply(cmd, cam) {
			t.Errorf("Apply(%v) = true, want false", cmd)
		}
		if cam.Position.Len() > 0 || cam.FocalLength != render.DefaultFocalLength {
			t.Errorf("Apply(%v) moved the camera", cmd)
		}
	}
}

func TestBindingsCoverAllCommands(t *testing.T) {
	bound := map[Command]bool{}
	for _, b := range bindings {
		if len(b.keys) == 0 {
			t.Errorf("binding for %v has no keys", b.cmd)
		}
		if bound[b.cmd] {
			t.Errorf("command %v bound twice", b.cmd)
		}
		bound[b.cmd] = true
	}

	for cmd := MoveForward; cmd <= Exit; cmd++ {
		if !bound[cmd] {
			t.Errorf("command %v has no key binding", cmd)
		}
	}
}
