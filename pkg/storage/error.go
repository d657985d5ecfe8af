package storage

// NotFoundError is returned when a transcript doesn't exist in the store.
type NotFoundError struct {
	Hash string
}

func (e NotFoundError) Error() string {
	if e.Hash == "" {
		return "transcript not found"
	}

	return "transcript not found: " + e.Hash
}
