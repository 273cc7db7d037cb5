package common

// Key codes delivered by the window's key callbacks. Values match GLFW, which
// uses ASCII for printable keys.
const (
	KeyB   = 66  // toggles the bloom contribution in the final mix
	KeyR   = 82  // resets the orbit controls to their initial pose
	KeyEsc = 256 // closes the window
)
