package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"boma/internal/models"
)

func TestCheck(t *testing.T) {
	tenant := &models.User{ID: "t1", Role: models.RoleTenant}
	landlord := &models.User{ID: "l1", Role: models.RoleLandlord}
	admin := &models.User{ID: "a1", Role: models.RoleAdmin}

	tests := []struct {
		name    string
		req     Requirement
		subject *models.User
		want    error
	}{
		{"public anonymous", Public(), nil, nil},
		{"public tenant", Public(), tenant, nil},

		{"authenticated anonymous", Authenticated(), nil, ErrUnauthenticated},
		{"authenticated tenant", Authenticated(), tenant, nil},

		{"roles anonymous", Roles(models.RoleAdmin), nil, ErrUnauthenticated},
		{"roles match", Roles(models.RoleLandlord, models.RoleAdmin), landlord, nil},
		{"roles mismatch", Roles(models.RoleAdmin), tenant, ErrForbidden},
		{"roles empty set", Roles(), admin, ErrForbidden},

		{"owner anonymous", OwnerOrAdmin("l1"), nil, ErrUnauthenticated},
		{"owner match", OwnerOrAdmin("l1"), landlord, nil},
		{"owner other user", OwnerOrAdmin("l1"), tenant, ErrForbidden},
		{"owner admin bypass", OwnerOrAdmin("l1"), admin, nil},
		{"owner empty id never matches", OwnerOrAdmin(""), &models.User{Role: models.RoleTenant}, ErrForbidden},

		{"zero requirement anonymous", Requirement{}, nil, ErrUnauthenticated},
		{"zero requirement admin", Requirement{}, admin, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.req, tt.subject)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
