package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKM(t *testing.T) {
	// Norwich (52.6309, 1.2974) to Ipswich (52.0567, 1.1482) ≈ 64.7km.
	norwich := Point(52.6309, 1.2974)
	ipswich := Point(52.0567, 1.1482)

	d := DistanceKM(norwich, ipswich)
	assert.InDelta(t, 64.7, d, 2)

	// Same point should be 0.
	assert.InDelta(t, 0, DistanceKM(norwich, norwich), 0.001)
}

func TestDistanceMiles(t *testing.T) {
	norwich := Point(52.6309, 1.2974)
	ipswich := Point(52.0567, 1.1482)

	assert.InDelta(t, 40.2, DistanceMiles(norwich, ipswich), 1.5)
}

func TestWithinRadius(t *testing.T) {
	norwich := Point(52.6309, 1.2974)
	ipswich := Point(52.0567, 1.1482)

	assert.True(t, WithinRadius(norwich, ipswich, 50))
	assert.False(t, WithinRadius(norwich, ipswich, 20))
}

func TestPointAccessors(t *testing.T) {
	p := Point(52.6309, 1.2974)
	assert.Equal(t, 52.6309, Lat(p))
	assert.Equal(t, 1.2974, Lon(p))
	assert.Equal(t, 4326, p.SRID())
}
