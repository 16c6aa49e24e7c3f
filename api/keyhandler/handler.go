package keyhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/munnerz/goautoneg"
	"github.com/ruteri/ssh-key-server/api"
	"github.com/ruteri/ssh-key-server/common"
	"github.com/ruteri/ssh-key-server/interfaces"
)

const (
	// MaxKeySize bounds the request body of key uploads.
	MaxKeySize = 1 << 20

	// KeyTypeHeader carries the detected or deleted key type on mutations.
	KeyTypeHeader = "X-Key-Type"

	// KeyFormField is the form field a key may be uploaded in.
	KeyFormField = "key"

	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

var listingAlternatives = []string{"text/plain", contentTypeJSON}

// Handler serves the /key resource tree on top of a KeyStore.
type Handler struct {
	store interfaces.KeyStore
	log   *slog.Logger
}

// NewHandler creates a new HTTP request handler for the key store.
func NewHandler(store interfaces.KeyStore, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log,
	}
}

// RegisterRoutes configures the router with the key server endpoints:
//   - GET / - Banner with the server version
//   - GET /key[/{host}[/{user}[/{keyType}]]] - Listings or a single key
//   - POST /key/{host}/{user} - Upload a new key
//   - PUT /key/{host}/{user} - Replace an existing key
//   - DELETE /key/{host}/{user}/{keyType} - Delete a key
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleIndex)

	r.Get("/key", h.HandleGet)
	r.Get("/key/{host}", h.HandleGet)
	r.Get("/key/{host}/{user}", h.HandleGet)
	r.Get("/key/{host}/{user}/{keyType}", h.HandleGet)

	r.Post("/key/{host}/{user}", h.HandleCreate)
	r.Put("/key/{host}/{user}", h.HandleReplace)
	r.Delete("/key/{host}/{user}/{keyType}", h.HandleDelete)
}

// HandleIndex returns the server banner.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeText)
	fmt.Fprintf(w, "SSH keys server - v%s\nTry the /key path.", common.Version)
}

// HandleGet resolves a progressive lookup. Missing path segments select a
// listing level; with all three segments the raw key is returned.
//
// Status codes:
//   - 200 OK: Listing or key returned
//   - 404 Not Found: Host, user or key type does not exist
//   - 500 Internal Server Error: Failed to encode the listing
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	host := r.PathValue("host")
	user := r.PathValue("user")
	keyType := r.PathValue("keyType")

	res, err := h.store.Get(r.Context(), host, user, keyType)
	if err != nil {
		h.writeError(w, err, "host", host, "user", user, "keyType", keyType)
		return
	}

	if res.Level == interfaces.RecordLevel {
		w.Header().Set("Content-Type", contentTypeText)
		w.Write(res.Record)
		return
	}

	names := res.Names
	if names == nil {
		names = []string{}
	}

	if goautoneg.Negotiate(r.Header.Get("Accept"), listingAlternatives) == contentTypeJSON {
		h.writeListingJSON(w, res.Level, names)
		return
	}

	w.Header().Set("Content-Type", contentTypeText)
	fmt.Fprintf(w, "%s\n%s", listingTitle(res.Level), strings.Join(names, "\n"))
}

// HandleCreate stores a new key for host and user.
//
// The key is read from the "key" form field when the request is a form
// submission, otherwise from the raw body.
//
// Status codes:
//   - 201 Created: Key stored, X-Key-Type carries the detected type
//   - 400 Bad Request: Missing key, invalid names or unrecognized key
//   - 409 Conflict: A key of the detected type already exists
//   - 413 Request Entity Too Large: Body exceeds MaxKeySize
//   - 500 Internal Server Error: Failed to write the key
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, h.store.Create, http.StatusCreated, "Key created.")
}

// HandleReplace overwrites the existing key of the detected type.
//
// Status codes:
//   - 200 OK: Key replaced
//   - 400 Bad Request: Missing key, invalid names or unrecognized key
//   - 404 Not Found: No key of the detected type exists yet
//   - 413 Request Entity Too Large: Body exceeds MaxKeySize
//   - 500 Internal Server Error: Failed to write the key
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, h.store.Replace, http.StatusOK, "Key replaced.")
}

// HandleDelete removes a key.
//
// Status codes:
//   - 200 OK: Key deleted
//   - 400 Bad Request: Unsupported key type or invalid names
//   - 404 Not Found: Key does not exist
//   - 500 Internal Server Error: Failed to remove the key
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	host := r.PathValue("host")
	user := r.PathValue("user")
	keyType := r.PathValue("keyType")

	if err := h.store.Delete(r.Context(), host, user, keyType); err != nil {
		h.writeError(w, err, "host", host, "user", user, "keyType", keyType)
		return
	}

	w.Header().Set(KeyTypeHeader, keyType)
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Key deleted."))
}

type uploadFunc func(ctx context.Context, host, user string, key []byte) (interfaces.KeyType, error)

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, upload uploadFunc, status int, message string) {
	host := r.PathValue("host")
	user := r.PathValue("user")

	key, err := readKey(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, fmt.Sprintf("Key exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, err, "host", host, "user", user)
		return
	}

	kt, err := upload(r.Context(), host, user, key)
	if err != nil {
		h.writeError(w, err, "host", host, "user", user)
		return
	}

	w.Header().Set(KeyTypeHeader, kt.String())
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(status)
	w.Write([]byte(message))
}

// readKey extracts the uploaded key from a form field or the raw body.
func readKey(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxKeySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var key []byte
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, formError(err)
		}
		key = []byte(r.PostForm.Get(KeyFormField))
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxKeySize); err != nil {
			return nil, formError(err)
		}
		if v := r.MultipartForm.Value[KeyFormField]; len(v) > 0 {
			key = []byte(v[0])
		} else if f, _, err := r.FormFile(KeyFormField); err == nil {
			defer f.Close()
			if key, err = io.ReadAll(f); err != nil {
				return nil, err
			}
		}
	default:
		var err error
		if key, err = io.ReadAll(r.Body); err != nil {
			return nil, err
		}
	}

	if len(bytes.TrimSpace(key)) == 0 {
		return nil, interfaces.InvalidInputf("missing key")
	}
	return key, nil
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return interfaces.InvalidInputf("malformed form: %v", err)
}

func (h *Handler) writeListingJSON(w http.ResponseWriter, level interfaces.ListingLevel, names []string) {
	var body any
	switch level {
	case interfaces.HostsLevel:
		body = api.HostsResponse{Hosts: names}
	case interfaces.UsersLevel:
		body = api.UsersResponse{Users: names}
	default:
		body = api.KeyTypesResponse{KeyTypes: names}
	}

	data, err := json.Marshal(body)
	if err != nil {
		h.log.Error("Failed to encode listing", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Write(data)
}

func listingTitle(level interfaces.ListingLevel) string {
	switch level {
	case interfaces.HostsLevel:
		return "Available hosts:"
	case interfaces.UsersLevel:
		return "Available users:"
	default:
		return "Available key types:"
	}
}

// StatusCode maps a KeyStore error onto an HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, interfaces.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error, attrs ...any) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Key store operation failed", append(attrs, "err", err)...)
	} else {
		h.log.Debug("Rejected key request", append(attrs, "err", err, "status", status)...)
	}
	http.Error(w, err.Error(), status)
}
