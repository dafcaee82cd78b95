// Package geo converts Universal Transverse Mercator positions, as reported
// by terminal GPS receivers, to WGS84 latitude and longitude.
package geo

import (
	"errors"
	"fmt"

	utm "github.com/im7mortal/UTM"
)

// Northings of the southern hemisphere are offset by this value.
const falseNorthingS = 10000000.0

var (
	ErrZone     = errors.New("UTM zone out of range 1-60")
	ErrEasting  = errors.New("easting out of range")
	ErrNorthing = errors.New("northing out of range")
)

// UTM converts positions given as zone number and hemisphere, which is what
// terminals report, rather than a latitude band letter.
type UTM struct{}

// ToLatLon returns latitude and longitude in decimal degrees.
func (UTM) ToLatLon(zone int, northern bool, easting, northing float64) (float64, float64, error) {
	if zone < 1 || zone > 60 {
		return 0, 0, fmt.Errorf("%w: %d", ErrZone, zone)
	}
	if easting < 100000 || easting >= 1000000 {
		return 0, 0, fmt.Errorf("%w: %.0f", ErrEasting, easting)
	}
	if northing < 0 || northing > falseNorthingS {
		return 0, 0, fmt.Errorf("%w: %.0f", ErrNorthing, northing)
	}

	lat, lon, err := utm.ToLatLon(easting, northing, zone, "", northern)
	if err != nil {
		return 0, 0, fmt.Errorf("convert zone %d %.0f %.0f: %w", zone, easting, northing, err)
	}
	return lat, lon, nil
}

// CentralMeridian returns the longitude of the centre of zone.
func CentralMeridian(zone int) float64 {
	return float64((zone-1)*6 - 180 + 3)
}
