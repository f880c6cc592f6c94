package user

import "unicode/utf16"

const hashPrime int32 = 31

// Hash folds the four fields into an int32 with multiplier 31, starting from 1.
// Absent strings contribute 0 and the token contributes its upper and lower
// 32 bits XORed together. Equal users always hash equal.
//
// A string hashes as s[0]*31^(n-1) + ... + s[n-1] over its UTF-16 code
// units with int32 overflow, so values match hashes computed by the services
// that share the users table.
func (u *User) Hash() int32 {
	if u == nil {
		return 0
	}

	result := int32(1)
	result = hashPrime*result + stringHash(u.email)
	result = hashPrime*result + stringHash(u.name)
	result = hashPrime*result + stringHash(u.password)
	result = hashPrime*result + int64Hash(u.token)
	return result
}

func stringHash(s *string) int32 {
	if s == nil {
		return 0
	}
	var h int32
	for _, unit := range utf16.Encode([]rune(*s)) {
		h = hashPrime*h + int32(unit)
	}
	return h
}

func int64Hash(v int64) int32 {
	return int32(v ^ int64(uint64(v)>>32))
}
