package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/tileworld/engine"
)

const stickDeadZone = 0.3

// keyboardBindings maps controller 0 onto the keyboard.
var keyboardBindings = [engine.ButtonCount][]ebiten.Key{
	engine.ButtonMoveUp:        {ebiten.KeyW},
	engine.ButtonMoveDown:      {ebiten.KeyS},
	engine.ButtonMoveLeft:      {ebiten.KeyA},
	engine.ButtonMoveRight:     {ebiten.KeyD},
	engine.ButtonActionUp:      {ebiten.KeyUp},
	engine.ButtonActionDown:    {ebiten.KeyDown},
	engine.ButtonActionLeft:    {ebiten.KeyLeft},
	engine.ButtonActionRight:   {ebiten.KeyRight},
	engine.ButtonLeftShoulder:  {ebiten.KeyQ},
	engine.ButtonRightShoulder: {ebiten.KeyE},
	engine.ButtonBack:          {ebiten.KeyEscape},
	engine.ButtonStart:         {ebiten.KeySpace, ebiten.KeyEnter},
}

// gamepadBindings maps the remaining controllers onto standard gamepads.
var gamepadBindings = [engine.ButtonCount]ebiten.StandardGamepadButton{
	engine.ButtonMoveUp:        ebiten.StandardGamepadButtonLeftTop,
	engine.ButtonMoveDown:      ebiten.StandardGamepadButtonLeftBottom,
	engine.ButtonMoveLeft:      ebiten.StandardGamepadButtonLeftLeft,
	engine.ButtonMoveRight:     ebiten.StandardGamepadButtonLeftRight,
	engine.ButtonActionUp:      ebiten.StandardGamepadButtonRightTop,
	engine.ButtonActionDown:    ebiten.StandardGamepadButtonRightBottom,
	engine.ButtonActionLeft:    ebiten.StandardGamepadButtonRightLeft,
	engine.ButtonActionRight:   ebiten.StandardGamepadButtonRightRight,
	engine.ButtonLeftShoulder:  ebiten.StandardGamepadButtonFrontTopLeft,
	engine.ButtonRightShoulder: ebiten.StandardGamepadButtonFrontTopRight,
	engine.ButtonBack:          ebiten.StandardGamepadButtonCenterLeft,
	engine.ButtonStart:         ebiten.StandardGamepadButtonCenterRight,
}

// pollInput fills in with this tick's keyboard, mouse and gamepad state.
func pollInput(in *engine.Input, dt float32, gamepads []ebiten.GamepadID) []ebiten.GamepadID {
	*in = engine.Input{DeltaTime: dt}

	mx, my := ebiten.CursorPosition()
	in.MouseX, in.MouseY = int32(mx), int32(my)
	_, wy := ebiten.Wheel()
	in.MouseZ = int32(wy)
	for i, b := range []ebiten.MouseButton{
		ebiten.MouseButtonLeft, ebiten.MouseButtonMiddle, ebiten.MouseButtonRight,
		ebiten.MouseButton3, ebiten.MouseButton4,
	} {
		in.MouseButtons[i] = mouseButton(b)
	}

	keyboard := &in.Controllers[0]
	keyboard.Connected = true
	for i, keys := range keyboardBindings {
		keyboard.Buttons[i] = keyButton(keys...)
	}

	gamepads = ebiten.AppendGamepadIDs(gamepads[:0])
	for n, id := range gamepads {
		c := in.Controller(n + 1)
		if c == nil {
			break
		}
		pollGamepad(c, id)
	}
	return gamepads
}

func pollGamepad(c *engine.Controller, id ebiten.GamepadID) {
	c.Connected = true
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return
	}
	for i, b := range gamepadBindings {
		c.Buttons[i] = gamepadButton(id, b)
	}

	x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	// Stick Y grows downward; world Y grows upward.
	y := -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	if math.Hypot(x, y) > stickDeadZone {
		c.Analog = true
		c.StickAverageX = float32(x)
		c.StickAverageY = float32(y)
	}
}

func keyButton(keys ...ebiten.Key) engine.Button {
	var b engine.Button
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			b.EndedDown = true
		}
		if inpututil.IsKeyJustPressed(k) || inpututil.IsKeyJustReleased(k) {
			b.HalfTransitionCount++
		}
	}
	return b
}

func gamepadButton(id ebiten.GamepadID, sb ebiten.StandardGamepadButton) engine.Button {
	b := engine.Button{EndedDown: ebiten.IsStandardGamepadButtonPressed(id, sb)}
	if inpututil.IsStandardGamepadButtonJustPressed(id, sb) || inpututil.IsStandardGamepadButtonJustReleased(id, sb) {
		b.HalfTransitionCount++
	}
	return b
}

func mouseButton(mb ebiten.MouseButton) engine.Button {
	b := engine.Button{EndedDown: ebiten.IsMouseButtonPressed(mb)}
	if inpututil.IsMouseButtonJustPressed(mb) || inpututil.IsMouseButtonJustReleased(mb) {
		b.HalfTransitionCount++
	}
	return b
}
