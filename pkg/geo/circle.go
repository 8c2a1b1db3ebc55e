package geo

import (
	"math"

	"lintang/dronepatrol/pkg/datastructure"
)

// SegmentCrossesCircle reports whether the straight segment p1-p2 touches the circle
// of the given center and radius.
//
// The segment is P(t) = p1 + t(p2-p1), t in [0,1]. Substituting into the circle equation
// gives a*t^2 + b*t + c = 0 with
//
//	a = |p2-p1|^2
//	b = 2 (p1-center).(p2-p1)
//	c = |p1-center|^2 - radius^2
//
// and the segment crosses iff a real root lies in [0,1]. A zero length segment
// crosses iff the point lies inside or on the circle.
func SegmentCrossesCircle(p1, p2, center datastructure.Coordinate, radius float64) bool {
	start, end, ctr := planar(p1), planar(p2), planar(center)

	d := end.Sub(start)
	f := start.Sub(ctr)

	a := d.Dot(d)
	if a == 0 {
		return f.Norm() <= radius
	}
	b := 2 * f.Dot(d)
	c := f.Dot(f) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}

	sq := math.Sqrt(discriminant)
	t1 := (-b + sq) / (2 * a)
	t2 := (-b - sq) / (2 * a)

	return inUnitInterval(t1) || inUnitInterval(t2)
}

func inUnitInterval(t float64) bool {
	return t >= 0 && t <= 1
}

func WithinCircle(p, center datastructure.Coordinate, radius float64) bool {
	return PlanarDistance(p, center) <= radius
}

// CirclePoints returns n evenly spaced points on the circle, starting due east of the
// center and winding counter clockwise.
func CirclePoints(center datastructure.Coordinate, radius float64, n int) []datastructure.Coordinate {
	pts := make([]datastructure.Coordinate, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, datastructure.NewCoordinate(
			center.Lat+radius*math.Sin(angle),
			center.Lon+radius*math.Cos(angle),
		))
	}
	return pts
}
