package api

// HostsResponse is the JSON form of a host listing.
type HostsResponse struct {
	Hosts []string `json:"hosts"`
}

// UsersResponse is the JSON form of the user listing of one host.
type UsersResponse struct {
	Users []string `json:"users"`
}

// KeyTypesResponse is the JSON form of the key types stored for one user.
type KeyTypesResponse struct {
	KeyTypes []string `json:"key_types"`
}
