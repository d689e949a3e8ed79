package auth

import "github.com/sahilchouksey/learnhub-api/model"

// Allows reports whether role satisfies any of required. Admin satisfies every requirement;
// an empty requirement list admits any authenticated role.
func Allows(role string, required ...string) bool {
	if role == "" {
		return false
	}
	if role == model.RoleAdmin || len(required) == 0 {
		return true
	}
	for _, r := range required {
		if role == r {
			return true
		}
	}
	return false
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case model.RoleStudent, model.RoleInstructor, model.RoleAdmin:
		return true
	}
	return false
}
