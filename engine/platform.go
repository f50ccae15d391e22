// Package engine is the boundary between the platform layer and the game.
// The platform owns memory, timing, input polling and presentation; each
// frame it calls UpdateAndRender with the memory block it handed out on the
// first frame.
package engine

import (
	"go.uber.org/zap"

	"github.com/milk9111/tileworld/bitmap"
	"github.com/milk9111/tileworld/config"
	"github.com/milk9111/tileworld/world"
)

// FileReader reads an entire asset. Missing files report an error.
type FileReader = bitmap.ReadFileFunc

// Memory is everything the platform lends the game. PermanentStorage holds
// the world for the life of the process and must start zeroed.
// TransientStorage is scratch space reused every frame.
type Memory struct {
	PermanentStorage []byte
	TransientStorage []byte

	ReadEntireFile FileReader
	Logger         *zap.Logger
	Config         *config.Config

	state *state
}

// Initialized reports whether the world has been built.
func (m *Memory) Initialized() bool {
	return m != nil && m.state != nil
}

func (m *Memory) logger() *zap.Logger {
	if m.Logger == nil {
		return zap.NewNop()
	}
	return m.Logger
}

func (m *Memory) config() *config.Config {
	if m.Config == nil {
		m.Config = config.Default()
	}
	return m.Config
}

// Button is the state of one digital button over a frame.
type Button struct {
	HalfTransitionCount int
	EndedDown           bool
}

// WasPressed reports whether the button went down during the frame.
func (b Button) WasPressed() bool {
	return b.HalfTransitionCount > 1 || (b.HalfTransitionCount == 1 && b.EndedDown)
}

// Controller button slots.
const (
	ButtonMoveUp = iota
	ButtonMoveDown
	ButtonMoveLeft
	ButtonMoveRight
	ButtonActionUp
	ButtonActionDown
	ButtonActionLeft
	ButtonActionRight
	ButtonLeftShoulder
	ButtonRightShoulder
	ButtonBack
	ButtonStart

	ButtonCount
)

type Controller struct {
	Connected bool
	Analog    bool

	StickAverageX float32
	StickAverageY float32

	Buttons [ButtonCount]Button
}

func (c *Controller) MoveUp() Button        { return c.Buttons[ButtonMoveUp] }
func (c *Controller) MoveDown() Button      { return c.Buttons[ButtonMoveDown] }
func (c *Controller) MoveLeft() Button      { return c.Buttons[ButtonMoveLeft] }
func (c *Controller) MoveRight() Button     { return c.Buttons[ButtonMoveRight] }
func (c *Controller) ActionUp() Button      { return c.Buttons[ButtonActionUp] }
func (c *Controller) ActionDown() Button    { return c.Buttons[ButtonActionDown] }
func (c *Controller) ActionLeft() Button    { return c.Buttons[ButtonActionLeft] }
func (c *Controller) ActionRight() Button   { return c.Buttons[ButtonActionRight] }
func (c *Controller) LeftShoulder() Button  { return c.Buttons[ButtonLeftShoulder] }
func (c *Controller) RightShoulder() Button { return c.Buttons[ButtonRightShoulder] }
func (c *Controller) Back() Button          { return c.Buttons[ButtonBack] }
func (c *Controller) Start() Button         { return c.Buttons[ButtonStart] }

// Input is one frame of input. Controller 0 is the keyboard.
type Input struct {
	MouseButtons [5]Button
	MouseX       int32
	MouseY       int32
	MouseZ       int32

	// DeltaTime is the seconds since the previous frame.
	DeltaTime float32

	Controllers [world.ControllerCount]Controller
}

// Controller returns controller i, or nil when i is out of range.
func (in *Input) Controller(i int) *Controller {
	if i < 0 || i >= len(in.Controllers) {
		return nil
	}
	return &in.Controllers[i]
}

// SoundBuffer receives SampleCount interleaved stereo frames.
type SoundBuffer struct {
	SamplesPerSecond int
	SampleCount      int
	Samples          []int16
}
