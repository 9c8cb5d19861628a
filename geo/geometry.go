package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for all look-angle
// geometry in this package (metres, spherical model).
const EarthRadiusMeters = 6371000.0

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

// GeoPoint is a position on (or above) the Earth in geodetic coordinates.
// Latitude and longitude are in degrees, altitude in metres above the
// sphere's surface.
type GeoPoint struct {
	LatitudeDeg    float64
	LongitudeDeg   float64
	AltitudeMeters float64
}

// LookResult describes the direction and distance from an observer to a
// target: a compass azimuth in [0,360) (0° = north, clockwise), an
// elevation above the observer's local horizon in [-90,90], and the
// great-circle distance between the two surface projections.
type LookResult struct {
	AzimuthDeg            float64
	ElevationDeg          float64
	SurfaceDistanceMeters float64
}

// Vec3 is an ECEF-style vector in metres.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Cross returns the cross product v × other.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// ClampLatitude forces a latitude into [-90, 90]. Sensor data occasionally
// arrives slightly outside the valid range and must never propagate an
// error into the geometry.
func ClampLatitude(deg float64) float64 {
	if deg > 90 {
		return 90
	}
	if deg < -90 {
		return -90
	}
	return deg
}

// WrapLongitude normalizes a longitude into [-180, 180).
func WrapLongitude(deg float64) float64 {
	wrapped := math.Mod(deg+180, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	return wrapped - 180
}

// radialUnit is the unit vector from the Earth's centre through the given
// latitude/longitude (radians).
func radialUnit(latRad, lonRad float64) Vec3 {
	return Vec3{
		X: math.Cos(latRad) * math.Cos(lonRad),
		Y: math.Cos(latRad) * math.Sin(lonRad),
		Z: math.Sin(latRad),
	}
}

// northUnit is the unit vector tangent to the sphere at the given point,
// pointing toward increasing latitude.
func northUnit(latRad, lonRad float64) Vec3 {
	return Vec3{
		X: -math.Sin(latRad) * math.Cos(lonRad),
		Y: -math.Sin(latRad) * math.Sin(lonRad),
		Z: math.Cos(latRad),
	}
}

// centralAngle returns the angle at the Earth's centre between two surface
// points, via the haversine formula (numerically stable for small angles).
func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ComputeLook returns the azimuth, elevation, and great-circle surface
// distance from observer to target. Both points are taken at their stated
// altitudes above the spherical Earth; the surface distance ignores
// altitude entirely.
//
// The function is total: out-of-range latitudes are clamped and longitudes
// wrapped before use, and the degenerate case where the two surface
// projections coincide returns azimuth 0 with elevation ±90 depending on
// which point is higher.
func ComputeLook(observer, target GeoPoint) LookResult {
	obsLat := ClampLatitude(observer.LatitudeDeg) * degToRad
	obsLon := WrapLongitude(observer.LongitudeDeg) * degToRad
	tgtLat := ClampLatitude(target.LatitudeDeg) * degToRad
	tgtLon := WrapLongitude(target.LongitudeDeg) * degToRad

	gamma := centralAngle(obsLat, obsLon, tgtLat, tgtLon)
	surfaceDistance := EarthRadiusMeters * gamma

	// Observer directly above or below the target's surface projection:
	// azimuth is undefined, so report 0 by convention and point straight
	// up or down.
	if gamma < 1e-9 {
		elev := 0.0
		if target.AltitudeMeters > observer.AltitudeMeters {
			elev = 90
		} else if target.AltitudeMeters < observer.AltitudeMeters {
			elev = -90
		}
		return LookResult{AzimuthDeg: 0, ElevationDeg: elev, SurfaceDistanceMeters: surfaceDistance}
	}

	up := radialUnit(obsLat, obsLon)
	north := northUnit(obsLat, obsLon)
	east := north.Cross(up)

	obsPos := up.Scale(EarthRadiusMeters + observer.AltitudeMeters)
	tgtPos := radialUnit(tgtLat, tgtLon).Scale(EarthRadiusMeters + target.AltitudeMeters)
	v := tgtPos.Sub(obsPos)

	vNorm := v.Norm()
	sinElev := v.Dot(up) / vNorm
	if sinElev > 1 {
		sinElev = 1
	} else if sinElev < -1 {
		sinElev = -1
	}
	elevation := math.Asin(sinElev) * radToDeg

	azimuth := math.Atan2(v.Dot(east), v.Dot(north)) * radToDeg
	azimuth = math.Mod(azimuth, 360)
	if azimuth < 0 {
		azimuth += 360
	}

	return LookResult{
		AzimuthDeg:            azimuth,
		ElevationDeg:          elevation,
		SurfaceDistanceMeters: surfaceDistance,
	}
}
