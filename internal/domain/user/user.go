package user

import (
	"fmt"
	"strconv"
)

// User is the user record. Every string field may be absent (nil), which is
// distinct from the empty string.
//
// The type performs no validation and no synchronization; callers sharing a
// User across goroutines must guard it themselves.
type User struct {
	email    *string // primary key of the backing row, char(64)
	name     *string // char(64)
	password *string // stored as given, char(64)

	// token is documented both as the last sign-in time in milliseconds and
	// as a session token. It is kept as an opaque int64 until real usage
	// settles which one it is.
	token int64
}

// New returns a user with every field absent and a zero token.
func New() *User {
	return NewUser(nil, nil, nil, 0)
}

// NewWithCredentials returns a user with email and password set, name absent
// and a zero token.
func NewWithCredentials(email, password string) *User {
	return NewUser(&email, nil, &password, 0)
}

// NewWithProfile returns a user with email, name and password set and a zero token.
func NewWithProfile(email, name, password string) *User {
	return NewUser(&email, &name, &password, 0)
}

// NewUser sets all four fields verbatim.
func NewUser(email, name, password *string, token int64) *User {
	return &User{
		email:    email,
		name:     name,
		password: password,
		token:    token,
	}
}

// StringPtr returns a pointer to s, for building optional fields inline.
func StringPtr(s string) *string {
	return &s
}

func (u *User) Email() *string         { return u.email }
func (u *User) SetEmail(email *string) { u.email = email }

func (u *User) Name() *string        { return u.name }
func (u *User) SetName(name *string) { u.name = name }

func (u *User) Password() *string            { return u.password }
func (u *User) SetPassword(password *string) { u.password = password }

func (u *User) Token() int64         { return u.token }
func (u *User) SetToken(token int64) { u.token = token }

// EmailValue returns the email or "" when absent.
func (u *User) EmailValue() string {
	return deref(u.email)
}

// EntityKind implements Entity.
func (u *User) EntityKind() string {
	return Kind
}

// Equal reports whether other is a User (or *User) whose four fields all
// match u. Two absent fields are equal; absent and present are not.
func (u *User) Equal(other any) bool {
	if u == nil {
		return false
	}

	var o *User
	switch v := other.(type) {
	case *User:
		o = v
	case User:
		o = &v
	default:
		return false
	}
	if o == nil {
		return false
	}
	if u == o {
		return true
	}

	return equalOptional(u.email, o.email) &&
		equalOptional(u.name, o.name) &&
		equalOptional(u.password, o.password) &&
		u.token == o.token
}

// Clone returns a deep copy, so the copy's optional fields do not alias u's.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	return NewUser(cloneOptional(u.email), cloneOptional(u.name), cloneOptional(u.password), u.token)
}

// String renders the four fields for debugging. It is not a wire format.
func (u *User) String() string {
	if u == nil {
		return "User <nil>"
	}
	return fmt.Sprintf("User [email=%s, name=%s, password=%s, token=%s]",
		display(u.email), display(u.name), display(u.password), strconv.FormatInt(u.token, 10))
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func display(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
