//go:build !(cgo && galnative)

package native

const available = false

func dm(float32, float32, float32, int32) (float32, error) { return 0, ErrUnavailable }

func tsky(float32, float32, float32) (float32, error) { return 0, ErrUnavailable }

func galtfeq(float32, float32, float32, float32, int32) (float32, float32, float32, float32, error) {
	return 0, 0, 0, 0, ErrUnavailable
}
