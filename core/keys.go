package core

// Key and mouse button codes. Values match GLFW so the window package can
// pass them straight through.
const (
	KeySpace     = 32
	KeyA         = 65
	KeyD         = 68
	KeyE         = 69
	KeyF         = 70
	KeyG         = 71
	KeyQ         = 81
	KeyR         = 82
	KeyS         = 83
	KeyW         = 87
	KeyEscape    = 256
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265
	KeyLeftShift = 340

	MouseButtonLeft  = 0
	MouseButtonRight = 1
)
