package types

import "time"

type Role string

const (
	RoleDonor       Role = "donor"
	RoleVolunteer   Role = "volunteer"
	RoleBeneficiary Role = "beneficiary"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleVolunteer, RoleBeneficiary:
		return true
	}
	return false
}

// Profile is the read-mostly projection of the identity provider's user
// record. The role is fixed at registration.
type Profile struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      Role      `db:"role"`
	Location  *string   `db:"location"`
	Phone     *string   `db:"phone"`
	Image     *string   `db:"image"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
