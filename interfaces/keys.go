package interfaces

import (
	"slices"
	"strings"
)

// Host is a validated host name, the first level of the key tree.
type Host = string

// User is a validated user name, the second level of the key tree.
type User = string

// KeyType identifies the algorithm of a stored public key.
type KeyType string

const (
	// KeyTypeRSA tags RSA public keys (stored as id_rsa.pub).
	KeyTypeRSA KeyType = "rsa"
	// KeyTypeDSA tags DSA public keys (stored as id_dsa.pub).
	KeyTypeDSA KeyType = "dsa"
)

// SupportedKeyTypes is the closed set of algorithms accepted for upload.
var SupportedKeyTypes = []KeyType{KeyTypeRSA, KeyTypeDSA}

// String returns the tag as used in file names and URLs.
func (kt KeyType) String() string {
	return string(kt)
}

// IsSupported reports whether kt is one of SupportedKeyTypes.
func (kt KeyType) IsSupported() bool {
	return slices.Contains(SupportedKeyTypes, kt)
}

// ParseKeyType normalizes a tag received from a caller. It returns false if
// the tag is not a supported key type.
func ParseKeyType(tag string) (KeyType, bool) {
	kt := KeyType(strings.ToLower(tag))
	return kt, kt.IsSupported()
}

// KeyRecord is the raw content of one stored public key, exactly as uploaded.
type KeyRecord []byte

// String returns the key text.
func (r KeyRecord) String() string {
	return string(r)
}

// ListingLevel tells which level of the key tree a GetResult describes.
type ListingLevel int

const (
	// HostsLevel lists all known hosts.
	HostsLevel ListingLevel = iota
	// UsersLevel lists the users of one host.
	UsersLevel
	// KeyTypesLevel lists the key types of one user on one host.
	KeyTypesLevel
	// RecordLevel carries a single key.
	RecordLevel
)

// String returns the level name.
func (l ListingLevel) String() string {
	switch l {
	case HostsLevel:
		return "hosts"
	case UsersLevel:
		return "users"
	case KeyTypesLevel:
		return "key_types"
	case RecordLevel:
		return "record"
	default:
		return "unknown"
	}
}

// GetResult is the answer to a progressive Get lookup. Names is populated for
// the listing levels, Record for RecordLevel.
type GetResult struct {
	Level  ListingLevel
	Names  []string
	Record KeyRecord
}
