package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var ErrBadCredentials = errors.New("auth: username or password is incorrect")

const (
	DefaultCookieName = "nobounce_admin"
	DefaultExpiryDays = 30
)

// File mirrors auth.yaml:
//
//	credentials:
//	  usernames:
//	    ana:
//	      email: ana@example.com
//	      name: Ana
//	      password: $2a$12$...
//	cookie:
//	  name: nobounce_admin
//	  key: some-long-secret
//	  expiry_days: 30
type File struct {
	Credentials struct {
		Usernames map[string]User `yaml:"usernames"`
	} `yaml:"credentials"`
	Cookie Cookie `yaml:"cookie"`
}

type User struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"` // bcrypt hash
}

type Cookie struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	ExpiryDays int    `yaml:"expiry_days"`
}

func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseFile(b)
}

// ParseFile decodes and validates an auth.yaml document. Usernames are matched case-insensitively.
func ParseFile(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode auth file: %w", err)
	}
	if f.Cookie.Key == "" {
		return nil, errors.New("auth file: cookie.key is required")
	}
	if f.Cookie.Name == "" {
		f.Cookie.Name = DefaultCookieName
	}
	if f.Cookie.ExpiryDays <= 0 {
		f.Cookie.ExpiryDays = DefaultExpiryDays
	}
	if len(f.Credentials.Usernames) == 0 {
		return nil, errors.New("auth file: no users under credentials.usernames")
	}

	users := make(map[string]User, len(f.Credentials.Usernames))
	for name, u := range f.Credentials.Usernames {
		if u.Password == "" {
			return nil, fmt.Errorf("auth file: user %q has no password hash", name)
		}
		users[strings.ToLower(name)] = u
	}
	f.Credentials.Usernames = users
	return &f, nil
}

// Verify checks a username/password pair against the bcrypt hashes in the file.
func (f *File) Verify(username, password string) (Admin, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	u, ok := f.Credentials.Usernames[username]
	if !ok {
		return Admin{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return Admin{}, ErrBadCredentials
	}
	return Admin{Username: username, Name: u.Name, Email: u.Email}, nil
}

// HashPassword returns a bcrypt hash suitable for auth.yaml.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
