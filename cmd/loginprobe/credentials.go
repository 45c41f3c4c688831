package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"login_redirect_probe/internal/probe"
)

// Account is a credential plus what the operator expects the login to do.
// Zero values mean "no expectation".
type Account struct {
	probe.Credential
	ExpectStatus   int
	ExpectLocation string
}

type credentialsFile struct {
	Credentials []struct {
		Email          string `yaml:"email"`
		Password       string `yaml:"password"`
		ExpectStatus   int    `yaml:"expect_status"`
		ExpectLocation string `yaml:"expect_location"`
	} `yaml:"credentials"`
}

// Seeded demo users of the sales dashboard
var defaultAccounts = []Account{
	{Credential: probe.Credential{Email: "staff@sales.local", Password: "password123"}},
	{Credential: probe.Credential{Email: "manager@sales.local", Password: "password123"}},
}

func loadAccounts(path string) ([]Account, error) {
	if path == "" {
		return append([]Account(nil), defaultAccounts...), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	accounts := make([]Account, 0, len(file.Credentials))
	for i, c := range file.Credentials {
		if c.Email == "" {
			return nil, fmt.Errorf("credentials file %s: entry %d has no email", path, i+1)
		}
		if c.ExpectStatus != 0 && (c.ExpectStatus < 100 || c.ExpectStatus > 599) {
			return nil, fmt.Errorf("credentials file %s: entry %d (%s) has invalid expect_status %d", path, i+1, c.Email, c.ExpectStatus)
		}
		accounts = append(accounts, Account{
			Credential:     probe.Credential{Email: c.Email, Password: c.Password},
			ExpectStatus:   c.ExpectStatus,
			ExpectLocation: c.ExpectLocation,
		})
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("credentials file %s lists no credentials", path)
	}

	return accounts, nil
}

func credentialsOf(accounts []Account) []probe.Credential {
	creds := make([]probe.Credential, len(accounts))
	for i, a := range accounts {
		creds[i] = a.Credential
	}
	return creds
}
