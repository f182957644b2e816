package region

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// Region is one sign cut out of a photo and warped upright. Callers own Mat
// and must Close it.
type Region struct {
	Mat     gocv.Mat
	Corners [4]image.Point // TL, TR, BR, BL in source coordinates
	Area    float64
	Whole   bool
}

func (r *Region) Close() error {
	return r.Mat.Close()
}

// CloseAll releases every region's Mat.
func CloseAll(regions []Region) {
	for i := range regions {
		_ = regions[i].Close()
	}
}

// Options tunes contour selection.
type Options struct {
	// MinAreaFraction is the smallest accepted contour area relative to the
	// whole image.
	MinAreaFraction float64
	// MaxCandidates bounds how many of the largest contours are inspected.
	MaxCandidates int
}

func DefaultOptions() Options {
	return Options{MinAreaFraction: 0.01, MaxCandidates: 5}
}

// Locate finds quadrilateral sign outlines in img and returns them rectified,
// largest first. When nothing qualifies the result is a single Whole region
// holding a copy of img, so the slice is never empty. img is not modified.
func Locate(img gocv.Mat, opts Options) []Region {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultOptions().MaxCandidates
	}
	if opts.MinAreaFraction <= 0 {
		opts.MinAreaFraction = DefaultOptions().MinAreaFraction
	}
	if img.Empty() {
		return []Region{whole(img)}
	}

	quads := findQuads(img, opts)
	if len(quads) == 0 {
		return []Region{whole(img)}
	}
	regions := make([]Region, 0, len(quads))
	for _, q := range quads {
		regions = append(regions, rectify(img, q))
	}
	return regions
}

func whole(img gocv.Mat) Region {
	w, h := img.Cols(), img.Rows()
	return Region{
		Mat:     img.Clone(),
		Corners: [4]image.Point{{0, 0}, {w, 0}, {w, h}, {0, h}},
		Area:    float64(w * h),
		Whole:   true,
	}
}

type quad struct {
	corners [4]image.Point
	area    float64
}

func findQuads(img gocv.Mat, opts Options) []quad {
	gray := gocv.NewMat()
	defer gray.Close()
	toGray(img, &gray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	type scored struct {
		idx  int
		area float64
	}
	cands := make([]scored, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		cands = append(cands, scored{idx: i, area: gocv.ContourArea(contours.At(i))})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].area > cands[j].area })
	if len(cands) > opts.MaxCandidates {
		cands = cands[:opts.MaxCandidates]
	}

	minArea := opts.MinAreaFraction * float64(img.Rows()*img.Cols())
	var out []quad
	for _, c := range cands {
		if c.area <= minArea {
			continue
		}
		cnt := contours.At(c.idx)
		peri := gocv.ArcLength(cnt, true)
		approx := gocv.ApproxPolyDP(cnt, 0.02*peri, true)
		pts := approx.ToPoints()
		approx.Close()
		if len(pts) != 4 {
			continue
		}
		out = append(out, quad{corners: orderCorners(pts), area: c.area})
	}
	return out
}

func toGray(src gocv.Mat, dst *gocv.Mat) {
	switch src.Channels() {
	case 1:
		src.CopyTo(dst)
	case 4:
		gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	}
}

// orderCorners sorts four points into TL, TR, BR, BL. TL has the smallest
// x+y and BR the largest; TR has the smallest y-x and BL the largest.
func orderCorners(pts []image.Point) [4]image.Point {
	var out [4]image.Point
	minSum, maxSum := math.MaxInt, math.MinInt
	minDiff, maxDiff := math.MaxInt, math.MinInt
	for _, p := range pts {
		s, d := p.X+p.Y, p.Y-p.X
		if s < minSum {
			minSum, out[0] = s, p
		}
		if s > maxSum {
			maxSum, out[2] = s, p
		}
		if d < minDiff {
			minDiff, out[1] = d, p
		}
		if d > maxDiff {
			maxDiff, out[3] = d, p
		}
	}
	return out
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// outputSize is the upright rectangle a quad is warped into: the longer of
// each pair of opposing edges.
func outputSize(c [4]image.Point) image.Point {
	tl, tr, br, bl := c[0], c[1], c[2], c[3]
	w := math.Max(dist(br, bl), dist(tr, tl))
	h := math.Max(dist(tr, br), dist(tl, bl))
	return image.Pt(int(w), int(h))
}

func rectify(img gocv.Mat, q quad) Region {
	size := outputSize(q.corners)
	if size.X < 1 || size.Y < 1 {
		return whole(img)
	}
	src := gocv.NewPointVectorFromPoints(q.corners[:])
	defer src.Close()
	dst := gocv.NewPointVectorFromPoints([]image.Point{
		{0, 0},
		{size.X - 1, 0},
		{size.X - 1, size.Y - 1},
		{0, size.Y - 1},
	})
	defer dst.Close()

	m := gocv.GetPerspectiveTransform(src, dst)
	defer m.Close()

	warped := gocv.NewMat()
	gocv.WarpPerspective(img, &warped, m, size)
	return Region{Mat: warped, Corners: q.corners, Area: q.area}
}
