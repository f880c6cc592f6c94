package user

// CreateUserRequest carries a new user. Name is optional; a nil Name leaves
// the stored name absent.
type CreateUserRequest struct {
	Email    string  `validate:"required,email,max=64"`
	Name     *string `validate:"omitempty,max=64"`
	Password string  `validate:"required,max=64"`
	Token    int64
}

// CreateUserResponse returns the key of the created user.
type CreateUserResponse struct {
	Email string
}

// Fields of a user that UpdateUserRequest.Clear can reset to absent.
const (
	FieldName     = "name"
	FieldPassword = "password"
)

// UpdateUserRequest patches an existing user. Nil fields keep their stored
// value; fields listed in Clear become absent. A field cannot be both set and
// cleared.
type UpdateUserRequest struct {
	Email    string  `validate:"required,email,max=64"`
	Name     *string `validate:"omitempty,max=64"`
	Password *string `validate:"omitempty,max=64"`
	Token    *int64
	Clear    []string `validate:"omitempty,dive,oneof=name password"`
}

// UpdateUserResponse returns the user after the patch.
type UpdateUserResponse struct {
	User User
}

// DeleteUserRequest identifies the user to remove.
type DeleteUserRequest struct {
	Email string `validate:"required,email,max=64"`
}

// DeleteUserResponse echoes the removed key.
type DeleteUserResponse struct {
	Email string
}

// GetUserRequest identifies the user to fetch.
type GetUserRequest struct {
	Email string `validate:"required,email,max=64"`
}

// GetUserResponse is the stored user.
type GetUserResponse struct {
	User User
}

// ListUsersRequest supports pagination and a search over email and name.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse is one page of users.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// User is the transport view of a user. The password never leaves the
// service layer.
type User struct {
	Email string
	Name  *string
	Token int64
}
