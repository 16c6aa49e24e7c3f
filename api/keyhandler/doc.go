// Package keyhandler implements the HTTP surface of the SSH key server and a
// client for it.
//
// # Routes
//
//	GET    /                              banner with the server version
//	GET    /key                           list hosts
//	GET    /key/{host}                    list users of a host
//	GET    /key/{host}/{user}             list key types of a user
//	GET    /key/{host}/{user}/{keyType}   fetch one key
//	POST   /key/{host}/{user}             upload a new key
//	PUT    /key/{host}/{user}             replace an existing key
//	DELETE /key/{host}/{user}/{keyType}   delete a key
//
// Uploads never name the key type: the server detects it from the content
// and reports it in the X-Key-Type response header. A key can be sent as the
// "key" form field or as the raw request body.
//
// # Errors
//
// KeyStore error kinds map onto status codes:
//
//	interfaces.ErrInvalidInput    400 Bad Request
//	interfaces.ErrNotFound        404 Not Found
//	interfaces.ErrConflict        409 Conflict
//	anything else                 500 Internal Server Error
//
// The Client reverses this mapping through APIError, so callers can use
// errors.Is on both sides of the wire.
//
// # Usage Example
//
// Server-side usage:
//
//	handler := keyhandler.NewHandler(store, logger)
//	router := chi.NewRouter()
//	handler.RegisterRoutes(router)
//
// Client-side usage:
//
//	client := keyhandler.NewClient("http://localhost:8080")
//	kt, err := client.CreateKey(ctx, "build.example.com", "deploy", pubkey)
//	if errors.Is(err, interfaces.ErrConflict) {
//	    kt, err = client.ReplaceKey(ctx, "build.example.com", "deploy", pubkey)
//	}
package keyhandler
