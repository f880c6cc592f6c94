package user

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		u := New()
		assert.Nil(t, u.Email())
		assert.Nil(t, u.Name())
		assert.Nil(t, u.Password())
		assert.Equal(t, int64(0), u.Token())
	})

	t.Run("email and password", func(t *testing.T) {
		u := NewWithCredentials("a@b.com", "secret")
		require.NotNil(t, u.Email())
		assert.Equal(t, "a@b.com", *u.Email())
		assert.Nil(t, u.Name())
		require.NotNil(t, u.Password())
		assert.Equal(t, "secret", *u.Password())
		assert.Equal(t, int64(0), u.Token())
	})

	t.Run("email, name and password", func(t *testing.T) {
		u := NewWithProfile("a@b.com", "Alice", "secret")
		assert.Equal(t, "Alice", *u.Name())
		assert.Equal(t, int64(0), u.Token())
	})

	t.Run("all fields", func(t *testing.T) {
		u := NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000)
		assert.Equal(t, "a@b.com", *u.Email())
		assert.Equal(t, "Alice", *u.Name())
		assert.Equal(t, "secret", *u.Password())
		assert.Equal(t, int64(1700000000000), u.Token())
	})

	t.Run("empty strings stay present", func(t *testing.T) {
		u := NewWithCredentials("", "")
		require.NotNil(t, u.Email())
		assert.Equal(t, "", *u.Email())
		assert.False(t, u.Equal(New()))
	})
}

func TestAccessors(t *testing.T) {
	u := New()

	for _, v := range []*string{StringPtr("x@y.z"), StringPtr(""), nil} {
		u.SetEmail(v)
		assert.Equal(t, v, u.Email())
		u.SetName(v)
		assert.Equal(t, v, u.Name())
		u.SetPassword(v)
		assert.Equal(t, v, u.Password())
	}

	u.SetToken(-42)
	assert.Equal(t, int64(-42), u.Token())
	assert.Equal(t, "", u.EmailValue())
}

func TestEqual(t *testing.T) {
	base := func() *User {
		return NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000)
	}

	tests := []struct {
		name  string
		other any
		want  bool
	}{
		{name: "identical fields", other: base(), want: true},
		{name: "value instead of pointer", other: *base(), want: true},
		{name: "different email", other: NewUser(StringPtr("c@d.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000), want: false},
		{name: "absent name", other: NewUser(StringPtr("a@b.com"), nil, StringPtr("secret"), 1700000000000), want: false},
		{name: "different password", other: NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("other"), 1700000000000), want: false},
		{name: "different token", other: NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1), want: false},
		{name: "untyped nil", other: nil, want: false},
		{name: "typed nil", other: (*User)(nil), want: false},
		{name: "unrelated type", other: "a@b.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base().Equal(tt.other))
		})
	}
}

func TestEqual_Properties(t *testing.T) {
	a := NewWithCredentials("a@b.com", "secret")
	b := NewWithCredentials("a@b.com", "secret")
	c := NewWithCredentials("a@b.com", "secret")

	assert.True(t, a.Equal(a), "reflexive")
	assert.True(t, a.Equal(b) && b.Equal(a), "symmetric")
	assert.True(t, a.Equal(b) && b.Equal(c) && a.Equal(c), "transitive")
	assert.True(t, a.Equal(b) && a.Equal(b), "consistent")

	assert.True(t, New().Equal(New()), "all absent fields compare equal")

	var nilUser *User
	assert.False(t, nilUser.Equal(a))
}

func TestHash(t *testing.T) {
	t.Run("matches reference values", func(t *testing.T) {
		assert.Equal(t, int32(99162322), stringHash(StringPtr("hello")))
		assert.Equal(t, int32(1996812), stringHash(StringPtr("é😀")))
		assert.Equal(t, int32(923521), New().Hash())
		assert.Equal(t, int32(131565990), NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000).Hash())
		assert.Equal(t, int32(188453307), NewWithCredentials("a@b.com", "secret").Hash())
	})

	t.Run("equal users hash equal", func(t *testing.T) {
		a := NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000)
		b := NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000)
		require.True(t, a.Equal(b))
		assert.Equal(t, a.Hash(), b.Hash())
	})

	t.Run("absent and empty differ", func(t *testing.T) {
		assert.Equal(t, int32(0), stringHash(nil))
		assert.Equal(t, int32(0), stringHash(StringPtr("")))
		// Both contribute 0, so these collide while staying unequal.
		a := NewUser(nil, nil, nil, 0)
		b := NewUser(StringPtr(""), nil, nil, 0)
		assert.False(t, a.Equal(b))
		assert.Equal(t, a.Hash(), b.Hash())
	})

	t.Run("token folds both halves", func(t *testing.T) {
		assert.Equal(t, int32(0), int64Hash(-1))
		assert.Equal(t, int32(1), int64Hash(1))
		assert.Equal(t, int32(1), int64Hash(1<<32))
	})
}

func TestString(t *testing.T) {
	u := NewUser(StringPtr("a@b.com"), StringPtr("Alice"), StringPtr("secret"), 1700000000000)
	assert.Equal(t, "User [email=a@b.com, name=Alice, password=secret, token=1700000000000]", u.String())

	assert.Equal(t, "User [email=a@b.com, name=<nil>, password=secret, token=0]", NewWithCredentials("a@b.com", "secret").String())
}

func TestClone(t *testing.T) {
	u := NewWithProfile("a@b.com", "Alice", "secret")
	c := u.Clone()
	require.True(t, u.Equal(c))

	*c.Name() = "Bob"
	assert.Equal(t, "Alice", *u.Name())
	assert.Nil(t, (*User)(nil).Clone())
}

func TestEntityKind(t *testing.T) {
	var e Entity = New()
	assert.Equal(t, Kind, e.EntityKind())
}

func TestJSON(t *testing.T) {
	t.Run("absent fields encode as null", func(t *testing.T) {
		data, err := json.Marshal(NewWithCredentials("a@b.com", "secret"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"email":"a@b.com","name":null,"password":"secret","token":0,"v":1}`, string(data))
	})

	t.Run("decode keeps absent distinct from empty", func(t *testing.T) {
		u := New()
		err := json.Unmarshal([]byte(`{"email":"","name":null,"password":"p","token":7,"v":1}`), u)
		require.NoError(t, err)
		assert.True(t, u.Equal(NewUser(StringPtr(""), nil, StringPtr("p"), 7)))
	})

	t.Run("round trip", func(t *testing.T) {
		in := NewUser(StringPtr("a@b.com"), StringPtr("Alice"), nil, -5)
		data, err := json.Marshal(in)
		require.NoError(t, err)

		out := New()
		require.NoError(t, json.Unmarshal(data, out))
		assert.True(t, in.Equal(out))
	})

	t.Run("version mismatch", func(t *testing.T) {
		err := json.Unmarshal([]byte(`{"email":"a@b.com","token":0,"v":2}`), New())
		assert.ErrorIs(t, err, ErrSchemaVersion)
	})
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                      string
		total, page, limit, pages int64
	}{
		{name: "exact fit", total: 20, page: 1, limit: 10, pages: 2},
		{name: "remainder", total: 21, page: 3, limit: 10, pages: 3},
		{name: "empty", total: 0, page: 1, limit: 10, pages: 0},
		{name: "zero limit", total: 5, page: 1, limit: 0, pages: 0},
		{name: "limit near int64 max", total: 5, page: 1, limit: math.MaxInt64, pages: 1},
		{name: "page past the end", total: 5, page: math.MaxInt64, limit: 10, pages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, tt.limit)
			assert.Equal(t, tt.pages, p.TotalPages)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, tt.page, p.Page)
		})
	}
}
