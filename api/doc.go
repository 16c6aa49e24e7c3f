/*
Package api holds the types shared by the key server's HTTP layer.

The subpackage keyhandler implements the /key routes and a matching client;
the httpserver package wraps it with health, drain and metrics endpoints
configured through HTTPServerConfig.

# Wire Format

Listings are plain text by default:

	Available hosts:
	build.example.com
	db1

When the request's Accept header prefers application/json the same listing
is encoded as one of HostsResponse, UsersResponse or KeyTypesResponse:

	{"hosts":["build.example.com","db1"]}

A single key is always returned as the raw bytes that were uploaded.
*/
package api
