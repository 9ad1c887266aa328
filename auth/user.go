package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UserFile is the marker the CLI keeps in its state directory between
// invocations.
const UserFile = "auth.json"

// User is the persisted login flag.
type User struct {
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// LoadUser reads the marker in dir. A missing or unreadable marker means
// logged out.
func LoadUser(dir string) User {
	data, err := os.ReadFile(filepath.Join(dir, UserFile))
	if err != nil {
		return User{}
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}
	}
	return u
}

func SaveUser(dir string, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, UserFile), data, 0o600)
}

// ClearUser removes the marker. It is not an error if none exists.
func ClearUser(dir string) error {
	err := os.Remove(filepath.Join(dir, UserFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
