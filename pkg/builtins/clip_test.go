package builtins

import "testing"

func TestRegisterClipIsIdempotent(t *testing.T) {
	RegisterClip()
	RegisterClip()
}
