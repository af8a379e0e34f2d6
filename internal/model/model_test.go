package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityDecodeNormalisesGuide(t *testing.T) {
	var id Identity
	err := json.Unmarshal([]byte(`{"_id":"u1","email":"g@x.rw","accountType":"guide","isAdmin":false}`), &id)
	require.NoError(t, err)

	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, AccountProvider, id.AccountType)
	assert.True(t, id.HasRole(RoleProvider))
	assert.False(t, id.HasRole(RoleAdmin))
}

func TestIdentityDecodeDefaultsToTourist(t *testing.T) {
	var id Identity
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u2","isAdmin":true}`), &id))

	assert.Equal(t, AccountTourist, id.AccountType)
	assert.True(t, id.HasRole(RoleAdmin))
	assert.True(t, id.HasRole(RoleTourist))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Guide")
	require.True(t, ok)
	assert.Equal(t, RoleProvider, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}

func TestMoneyTimesIsExact(t *testing.T) {
	unit := FromAmount(25)
	for n, want := range map[int]float64{1: 25, 2: 50, 3: 75} {
		assert.Equal(t, want, unit.Times(n).Amount())
	}
	assert.Equal(t, "0.30", FromAmount(0.1).Times(3).String())
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"40.5"`), &m))
	assert.Equal(t, Money(4050), m)

	out, err := json.Marshal(FromAmount(40).Times(2))
	require.NoError(t, err)
	assert.JSONEq(t, `80`, string(out))
}
