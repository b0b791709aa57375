package models

// Page is the list envelope every collection endpoint of the API returns.
// Next and Previous are absolute URLs carrying a page= query parameter,
// or null on the last/first page respectively.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
