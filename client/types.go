package client

import "erp-access/permissions"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// User is an account as the API returns it.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	RealName string `json:"real_name"`
	RoleID   *uint  `json:"role_id"`
	RoleName string `json:"role_name,omitempty"`
	Inactive bool   `json:"inactive"`
}

// CurrentUser is the session user with its permission codes.
type CurrentUser struct {
	User        User     `json:"user"`
	Permissions []string `json:"permissions"`
}

// Set returns the permission object of the session.
func (u *CurrentUser) Set() permissions.Set {
	return permissions.SetOf(u.Permissions...)
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Path       string `json:"path"`
	Page       string `json:"page"`
	Title      string `json:"title"`
	Permission string `json:"permission,omitempty"`
	Allowed    bool   `json:"allowed"`
}

// Decision is the guard outcome for one path.
type Decision struct {
	Route struct {
		Path       string `json:"path"`
		Page       string `json:"page"`
		Title      string `json:"title"`
		Permission string `json:"permission,omitempty"`
	} `json:"route"`
	View string `json:"view"`
}
