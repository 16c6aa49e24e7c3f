// Package main (cmd/keyctl) is a command line client for the SSH key server.
//
// Example usage:
//
//	keyctl list
//	keyctl list build.example.com
//	keyctl add build.example.com deploy ~/.ssh/id_rsa.pub
//	keyctl add --replace build.example.com deploy ~/.ssh/id_rsa.pub
//	keyctl get build.example.com deploy rsa >> ~/.ssh/known_keys
//	keyctl delete build.example.com deploy rsa
//
// The server address is taken from --server or KEYSERVER_URL.
package main
