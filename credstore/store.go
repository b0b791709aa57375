package credstore

// Store is the client-side credential and residue cache. It replaces the
// per-site key-value storage the platform's browser clients use: the auth
// token plus a handful of small values (last wizard ids, cached choices).
// Clear wipes everything, which is the logout semantic.
type Store interface {
	Token() string
	SetToken(token string) error

	Get(key string) string
	Set(key, value string) error
	Delete(key string) error

	Clear() error
}
