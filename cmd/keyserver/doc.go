// Package main (cmd/keyserver) runs the SSH public key server.
//
// The server keeps public keys in a directory tree of the form
// <key-dir>/<host>/<user>/id_<type>.pub and serves them over HTTP. Keys can
// be listed, fetched, uploaded, replaced and deleted; the key type is always
// detected from the uploaded content.
//
// Settings come from three layers, later ones winning:
//
//   - flag defaults,
//   - keyserver.yaml and keyserver.local.yaml in --config-dir,
//   - flags given on the command line or through KEYSERVER_* environment
//     variables.
//
// The key directory must exist and be readable and writable at startup,
// otherwise the server refuses to start.
//
// Signals:
//
//   - SIGHUP rescans the key directory, picking up files edited by hand.
//   - SIGINT and SIGTERM drain the server and shut it down gracefully.
//
// Example usage:
//
//	keyserver --key-dir /var/lib/keyserver --listen-addr 0.0.0.0:8080
//
//	curl -X POST --data-binary @$HOME/.ssh/id_rsa.pub http://localhost:8080/key/build.example.com/deploy
//	curl http://localhost:8080/key/build.example.com/deploy/rsa
package main
