package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"tenant", "landlord", "admin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(r))
	}

	for _, s := range []string{"", "Admin", "superadmin", "root"} {
		_, err := ParseRole(s)
		assert.Error(t, err, s)
	}
}

func TestRoleUnmarshalRejectsUnknown(t *testing.T) {
	var body struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"landlord"}`), &body))
	assert.Equal(t, RoleLandlord, body.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"owner"}`), &body))
}

func TestPublicUserOmitsPasswordHash(t *testing.T) {
	u := User{ID: "u1", Username: "alice", Email: "a@x.io", PasswordHash: "$2a$10$secret", Role: RoleTenant}
	raw, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.Contains(t, string(raw), `"username":"alice"`)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, RatingSummary{}, Summarize(nil))

	s := Summarize([]Review{
		{SafetyRating: 5, WaterRating: 3, LandlordRating: 4},
		{SafetyRating: 3, WaterRating: 3, LandlordRating: 2},
	})
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 4.0, s.Safety, 1e-9)
	assert.InDelta(t, 3.0, s.Water, 1e-9)
	assert.InDelta(t, 3.0, s.Landlord, 1e-9)
	assert.InDelta(t, 10.0/3, s.Overall, 1e-9)
}
