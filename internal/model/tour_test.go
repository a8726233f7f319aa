package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	for _, c := range TourCategories {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("adventure")) // case-sensitive
	assert.False(t, ValidCategory(""))
	assert.False(t, ValidCategory("Space Travel"))
}

func TestBookable(t *testing.T) {
	tour := &Tour{IsActive: true}
	assert.True(t, tour.Bookable())

	assert.False(t, (&Tour{IsActive: false}).Bookable())
	assert.False(t, (&Tour{IsActive: true, IsBlocked: true}).Bookable())
	assert.False(t, (&Tour{IsActive: true, IsDeleted: true}).Bookable())
}

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(4.3))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(0.9))
	assert.False(t, ValidRating(5.1))
	assert.False(t, ValidRating(0))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleTraveller))
	assert.True(t, ValidRole(RoleGuide))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superuser"))
	assert.False(t, ValidRole(""))
}
