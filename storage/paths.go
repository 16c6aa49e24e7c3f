package storage

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/miekg/dns"
	"github.com/ruteri/ssh-key-server/interfaces"
)

const (
	keyFilePrefix = "id_"
	keyFileSuffix = ".pub"
)

var (
	// Dot separated labels; each label starts and ends alphanumeric and may
	// carry hyphens inside. No leading, trailing or doubled dots.
	hostRe = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?)*$`)

	userRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{3,}$`)

	keyFileRe = regexp.MustCompile(`^` + keyFilePrefix + `([^.]+)` + regexp.QuoteMeta(keyFileSuffix) + `$`)
)

// ValidateHost reports whether s is an acceptable host name.
func ValidateHost(s string) bool {
	if !hostRe.MatchString(s) {
		return false
	}
	_, ok := dns.IsDomainName(s)
	return ok
}

// ValidateUser reports whether s is an acceptable user name.
func ValidateUser(s string) bool {
	return userRe.MatchString(s)
}

// KeyFileName returns the file name a key of type kt is stored under.
func KeyFileName(kt interfaces.KeyType) string {
	return keyFilePrefix + kt.String() + keyFileSuffix
}

// KeyPath returns host/user/id_<kt>.pub relative to the key directory.
// Callers must validate host and user first.
func KeyPath(host interfaces.Host, user interfaces.User, kt interfaces.KeyType) string {
	return filepath.Join(host, user, KeyFileName(kt))
}

// ParseKeyFileName extracts the key type tag from id_<tag>.pub.
func ParseKeyFileName(name string) (string, bool) {
	m := keyFileRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseKeyPath is the inverse of KeyPath. It accepts only paths of exactly
// three elements whose last element matches id_<tag>.pub.
func ParseKeyPath(path string) (host interfaces.Host, user interfaces.User, tag string, ok bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", false
	}

	tag, ok = ParseKeyFileName(parts[2])
	if !ok {
		return "", "", "", false
	}
	return parts[0], parts[1], tag, true
}
