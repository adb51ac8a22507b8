package gen

import "github.com/satori/go.uuid"

// NewUUID generates new UUID.
func NewUUID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// IsUUID reports whether s is a textual UUID.
func IsUUID(s string) bool {
	_, err := uuid.FromString(s)
	return err == nil
}
