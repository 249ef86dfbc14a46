package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/julianstephens/steady/internal/constants"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// IsConnString reports whether s looks like a PostgreSQL URL or key=value
// connection string rather than a sqlite path.
func IsConnString(s string) bool {
	return isURL(s) || strings.Contains(s, "host=")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// connParams returns the connection parameters of s keyed by lower-cased
// name. URL credentials are reported as "user" and "password".
func connParams(s string) (map[string]string, error) {
	params := map[string]string{}
	if isURL(s) {
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		for k, v := range u.Query() {
			params[strings.ToLower(k)] = strings.Join(v, ",")
		}
		if u.Host != "" {
			params["host"] = u.Host
		}
		if u.User != nil {
			params["user"] = u.User.Username()
			if pw, ok := u.User.Password(); ok {
				params["password"] = pw
			}
		}
		if db := strings.TrimPrefix(u.Path, "/"); db != "" {
			params["dbname"] = db
		}
		return params, nil
	}

	for _, field := range strings.Fields(s) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		params[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return params, nil
}

func hasParam(s, key string) bool {
	params, err := connParams(s)
	if err != nil {
		return false
	}
	_, ok := params[key]
	return ok
}

// withSearchPath pins the session to the application schema unless the
// caller already chose one.
func withSearchPath(s string) string {
	if hasParam(s, "search_path") {
		return s
	}
	if !isURL(s) {
		return strings.TrimSpace(s) + " search_path=" + constants.AppName
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	q := u.Query()
	q.Set("search_path", constants.AppName)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidateConnString checks that s parses as a PostgreSQL connection string
// and carries no password. ErrEmbeddedCredentials is returned for an
// otherwise valid string that does.
func ValidateConnString(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	params, err := connParams(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if isURL(s) && params["host"] == "" && params["user"] == "" && params["dbname"] == "" {
		return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	if _, ok := params["password"]; ok {
		return ErrEmbeddedCredentials
	}
	return nil
}
