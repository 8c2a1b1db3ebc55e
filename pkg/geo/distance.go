package geo

import (
	"lintang/dronepatrol/pkg/datastructure"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371010.0

// planar maps a coordinate onto the flat plane, x = longitude, y = latitude.
func planar(c datastructure.Coordinate) r2.Point {
	return r2.Point{X: c.Lon, Y: c.Lat}
}

// PlanarDistance is the euclidean distance in degree units. Altitude is ignored and
// no geodesic correction is applied.
func PlanarDistance(p1, p2 datastructure.Coordinate) float64 {
	return planar(p1).Sub(planar(p2)).Norm()
}

// GeodesicMeters is the great circle distance between two coordinates. Only used for
// reporting flight length, never for route selection.
func GeodesicMeters(p1, p2 datastructure.Coordinate) float64 {
	a := s2.LatLngFromDegrees(p1.Lat, p1.Lon)
	b := s2.LatLngFromDegrees(p2.Lat, p2.Lon)
	return a.Distance(b).Radians() * earthRadiusMeters
}

// PathLength sums PlanarDistance and GeodesicMeters over consecutive coordinates.
func PathLength(path []datastructure.Coordinate) (degrees float64, meters float64) {
	for i := 0; i+1 < len(path); i++ {
		degrees += PlanarDistance(path[i], path[i+1])
		meters += GeodesicMeters(path[i], path[i+1])
	}
	return degrees, meters
}
