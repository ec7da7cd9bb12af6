package scene

import (
	"fmt"
	"image"
	"image/color"
	stdmath "math"

	"meadow/math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/chewxy/math32"
	"github.com/ojrac/opensimplex-go"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// HeightField is a scalar field over the ground plane.
type HeightField interface {
	Sample(x, z float32) float32
}

// ImageHeightField samples image luminance. World coordinates are scaled
// into texture space and wrap, so the field tiles the infinite plane.
type ImageHeightField struct {
	width, height int
	values        []float32

	// Scale maps world units to texture repeats.
	Scale float32
	// Intensity multiplies the sampled luminance.
	Intensity float32
}

func NewImageHeightField(img image.Image, scale, intensity float32) *ImageHeightField {
	gray := effect.Grayscale(img)
	b := gray.Bounds()
	h := &ImageHeightField{
		width:     b.Dx(),
		height:    b.Dy(),
		values:    make([]float32, b.Dx()*b.Dy()),
		Scale:     scale,
		Intensity: intensity,
	}
	for y := 0; y < h.height; y++ {
		for x := 0; x < h.width; x++ {
			l := color.GrayModel.Convert(gray.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
			h.values[y*h.width+x] = float32(l) / 255
		}
	}
	return h
}

// MaxHeightmapSize bounds the side of a loaded heightmap; larger images are
// resampled down.
const MaxHeightmapSize = 1024

// LoadHeightField decodes an image file (png, jpeg, bmp, tiff, webp) and
// optionally smooths it with a gaussian blur of blurRadius pixels.
func LoadHeightField(path string, scale, intensity float32, blurRadius float64) (*ImageHeightField, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	if b := img.Bounds(); b.Dx() > MaxHeightmapSize || b.Dy() > MaxHeightmapSize {
		w := min(b.Dx(), MaxHeightmapSize)
		h := min(b.Dy(), MaxHeightmapSize)
		img = transform.Resize(img, w, h, transform.Linear)
	}
	if blurRadius > 0 {
		img = blur.Gaussian(img, blurRadius)
	}
	return NewImageHeightField(img, scale, intensity), nil
}

// NoiseImage renders opensimplex noise that tiles across the image edges,
// used when no heightmap file is configured. cells is the number of noise
// features across one side.
func NoiseImage(size, cells int, seed uint64) *image.Gray {
	if cells < 1 {
		cells = 1
	}
	noise := opensimplex.NewNormalized(int64(seed))
	// each axis walks a circle, so the 4D torus wraps at the image edges
	r := float64(cells) / (2 * stdmath.Pi)
	step := 2 * stdmath.Pi / float64(size)

	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		sy, cy := stdmath.Sincos(float64(y) * step)
		for x := 0; x < size; x++ {
			sx, cx := stdmath.Sincos(float64(x) * step)
			v := noise.Eval4(r*cx, r*sx, r*cy, r*sy)
			img.Pix[y*img.Stride+x] = uint8(min(max(v, 0), 1)*255 + 0.5)
		}
	}
	return img
}

// Sample bilinearly interpolates the wrapped texel grid at (x, z).
func (h *ImageHeightField) Sample(x, z float32) float32 {
	if h.width == 0 || h.height == 0 {
		return 0
	}
	u := x*h.Scale*float32(h.width) - 0.5
	v := z*h.Scale*float32(h.height) - 0.5
	u0, v0 := math32.Floor(u), math32.Floor(v)
	tu, tv := u-u0, v-v0
	x0, y0 := int(u0), int(v0)

	top := lerp(h.texel(x0, y0), h.texel(x0+1, y0), tu)
	bottom := lerp(h.texel(x0, y0+1), h.texel(x0+1, y0+1), tu)
	return lerp(top, bottom, tv) * h.Intensity
}

func (h *ImageHeightField) texel(x, y int) float32 {
	x %= h.width
	if x < 0 {
		x += h.width
	}
	y %= h.height
	if y < 0 {
		y += h.height
	}
	return h.values[y*h.width+x]
}

// ClimbHeightField nudges p uphill: each iteration samples the four axis
// neighbours at step and moves to the highest one if it beats the current
// sample. p never moves further than iterations*step.
func ClimbHeightField(hf HeightField, p math.Vec2, iterations int, step float32) math.Vec2 {
	best := hf.Sample(p.X, p.Y)
	offsets := [4]math.Vec2{{X: step}, {X: -step}, {Y: step}, {Y: -step}}
	for i := 0; i < iterations; i++ {
		next := p
		for _, d := range offsets {
			c := p.Add(d)
			if v := hf.Sample(c.X, c.Y); v > best {
				best = v
				next = c
			}
		}
		if next == p {
			break
		}
		p = next
	}
	return p
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
