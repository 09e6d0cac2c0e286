package yuv

import "github.com/yyyoichi/artshield/tensor"

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234

const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
)

// Luma returns the Y plane of an (H, W, C>=3) tensor in row-major order.
func Luma(t *tensor.Tensor) []float64 {
	n := t.Channels()
	pix := t.Pix()
	y := make([]float64, t.Height()*t.Width())
	for i := range y {
		r := float64(pix[i*n])
		g := float64(pix[i*n+1])
		b := float64(pix[i*n+2])
		y[i] = yr*r + yg*g + yb*b
	}
	return y
}
