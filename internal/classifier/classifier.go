// Package classifier labels uploaded images.
package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"
)

// ErrUndecodable is returned for data that is not a PNG, JPEG or GIF image.
var ErrUndecodable = errors.New("image could not be decoded")

// Prediction is the result of classifying one image.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Classifier interface {
	Classify(data []byte) (Prediction, error)
}

// Centroid is the mean colour of one class, each channel in [0, 1].
type Centroid struct {
	Label   string
	R, G, B float64
}

// DefaultCentroids were fitted offline on mean scene colours.
var DefaultCentroids = []Centroid{
	{Label: "sky", R: 0.45, G: 0.65, B: 0.90},
	{Label: "vegetation", R: 0.25, G: 0.50, B: 0.20},
	{Label: "sand", R: 0.85, G: 0.75, B: 0.55},
	{Label: "snow", R: 0.92, G: 0.93, B: 0.95},
	{Label: "night", R: 0.08, G: 0.08, B: 0.15},
	{Label: "sunset", R: 0.90, G: 0.45, B: 0.25},
	{Label: "water", R: 0.10, G: 0.35, B: 0.55},
	{Label: "urban", R: 0.50, G: 0.50, B: 0.50},
}

const (
	// maxSamples bounds the work per image regardless of its size.
	maxSamples  = 64
	temperature = 0.05
)

// CentroidClassifier assigns the label of the nearest centroid to the image's
// mean colour. Confidence is the softmax of the negative squared distances.
type CentroidClassifier struct {
	centroids []Centroid
}

func NewCentroidClassifier(centroids []Centroid) *CentroidClassifier {
	if len(centroids) == 0 {
		centroids = DefaultCentroids
	}
	return &CentroidClassifier{centroids: centroids}
}

func (c *CentroidClassifier) Classify(data []byte) (Prediction, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	r, g, b, err := meanColour(img)
	if err != nil {
		return Prediction{}, err
	}

	scores := c.Scores(r, g, b)
	return scores[0], nil
}

// Scores returns every label with its confidence, best first.
func (c *CentroidClassifier) Scores(r, g, b float64) []Prediction {
	logits := make([]float64, len(c.centroids))
	best := math.Inf(-1)
	for i, ct := range c.centroids {
		d := (r-ct.R)*(r-ct.R) + (g-ct.G)*(g-ct.G) + (b-ct.B)*(b-ct.B)
		logits[i] = -d / temperature
		best = math.Max(best, logits[i])
	}

	var sum float64
	for i := range logits {
		logits[i] = math.Exp(logits[i] - best)
		sum += logits[i]
	}

	out := make([]Prediction, len(c.centroids))
	for i, ct := range c.centroids {
		out[i] = Prediction{Label: ct.Label, Confidence: logits[i] / sum}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func meanColour(img image.Image) (float64, float64, float64, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, fmt.Errorf("%w: empty image", ErrUndecodable)
	}

	stepX := max(1, w/maxSamples)
	stepY := max(1, h/maxSamples)

	var rs, gs, bs, n float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			rs += float64(r) / 0xffff
			gs += float64(g) / 0xffff
			bs += float64(b) / 0xffff
			n++
		}
	}
	return rs / n, gs / n, bs / n, nil
}
