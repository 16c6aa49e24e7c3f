package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruteri/ssh-key-server/interfaces"
	"github.com/stretchr/testify/assert"
)

func TestValidateHost(t *testing.T) {
	tests := []struct {
		host  string
		valid bool
	}{
		{"a", true},
		{"ab", true},
		{"server1", true},
		{"web-01.example.com", true},
		{"10.0.0.1", true},
		{"a-b-c", true},
		{"", false},
		{"-a", false},
		{"a-", false},
		{"a..b", false},
		{".a", false},
		{"a.", false},
		{"a.-b", false},
		{"a-.b", false},
		{"a_b", false},
		{"a/b", false},
		{"..", false},
		{strings.Repeat("a", 63), true},
		{strings.Repeat("a", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateHost(tt.host))
		})
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		user  string
		valid bool
	}{
		{"ab12", true},
		{"root", true},
		{"john.doe", true},
		{"svc_backup-2", true},
		{"ab1", false},
		{"", false},
		{".abcd", false},
		{"_abcd", false},
		{"-abcd", false},
		{"ab/cd", false},
		{"ab cd", false},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateUser(tt.user))
		})
	}
}

func TestKeyPathRoundTrip(t *testing.T) {
	path := KeyPath("example.com", "alice", interfaces.KeyTypeRSA)
	assert.Equal(t, filepath.Join("example.com", "alice", "id_rsa.pub"), path)

	host, user, tag, ok := ParseKeyPath(path)
	assert.True(t, ok)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "rsa", tag)
}

func TestParseKeyPath_Rejects(t *testing.T) {
	for _, path := range []string{
		"example.com/alice",
		"example.com/alice/extra/id_rsa.pub",
		"example.com/alice/rsa.pub",
		"example.com/alice/id_rsa.pub.bak",
		"example.com/alice/id_.pub",
		"example.com/alice/id_rsa.old.pub",
		"example.com/alice/id_rsaXpub",
		"/alice/id_rsa.pub",
	} {
		t.Run(path, func(t *testing.T) {
			_, _, _, ok := ParseKeyPath(path)
			assert.False(t, ok)
		})
	}
}

func TestParseKeyFileName(t *testing.T) {
	tag, ok := ParseKeyFileName("id_ed25519.pub")
	assert.True(t, ok)
	assert.Equal(t, "ed25519", tag)

	_, ok = ParseKeyFileName("authorized_keys")
	assert.False(t, ok)
}
