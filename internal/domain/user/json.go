package user

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSchemaVersion is returned when decoding a payload written with a
// different SchemaVersion.
var ErrSchemaVersion = errors.New("user: schema version mismatch")

type userJSON struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Token    int64   `json:"token"`
	Version  int     `json:"v"`
}

// MarshalJSON encodes the user with absent fields as null and the schema
// version under "v".
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		Email:    u.email,
		Name:     u.name,
		Password: u.password,
		Token:    u.token,
		Version:  SchemaVersion,
	})
}

// UnmarshalJSON decodes a payload produced by MarshalJSON.
func (u *User) UnmarshalJSON(data []byte) error {
	var w userJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Version != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, w.Version, SchemaVersion)
	}

	u.email = w.Email
	u.name = w.Name
	u.password = w.Password
	u.token = w.Token
	return nil
}
