package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileUpdate_Apply_OnlySetFields(t *testing.T) {
	land := 2.5
	u := &User{ID: "7", Role: RoleFarmer, Name: "Ravi", District: "Kottayam", LandSize: &land}

	done := true
	ProfileUpdate{ProfileCompleted: &done}.Apply(u)

	assert.True(t, u.ProfileCompleted)
	assert.Equal(t, "Ravi", u.Name)
	assert.Equal(t, "Kottayam", u.District)
	assert.Equal(t, 2.5, *u.LandSize)
}

func TestProfileUpdate_Apply_CopiesSlices(t *testing.T) {
	crops := []string{"banana", "rubber"}
	u := &User{ID: "7"}

	ProfileUpdate{PrimaryCrops: &crops}.Apply(u)
	crops[0] = "paddy"

	assert.Equal(t, []string{"banana", "rubber"}, u.PrimaryCrops)
}

func TestUser_Clone(t *testing.T) {
	exp := 15
	u := &User{ID: "1", PrimaryCrops: []string{"rubber"}, Experience: &exp}

	c := u.Clone()
	c.PrimaryCrops[0] = "paddy"
	*c.Experience = 3

	assert.Equal(t, "rubber", u.PrimaryCrops[0])
	assert.Equal(t, 15, *u.Experience)
	assert.Nil(t, (*User)(nil).Clone())
}

func TestRoleAndLocaleValid(t *testing.T) {
	assert.True(t, RoleOfficer.Valid())
	assert.False(t, Role("guest").Valid())
	assert.True(t, LocaleEnglish.Valid())
	assert.False(t, Locale("fr").Valid())
}
