// Copyright (c) 2025 BVK Chaitanya

// Package envfile loads KEY=VALUE assignments from a file into the process
// environment. Lines starting with # are comments and an optional "export"
// prefix is accepted. Values are not expanded.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var nameRe = regexp.MustCompile("^[a-zA-Z_][0-9a-zA-Z_]*$")

// Parse returns the variable assignments in the order they appear.
func Parse(r io.Reader) ([][2]string, error) {
	var vars [][2]string
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable assignment on line %d: %w", i, os.ErrInvalid)
		}
		key = strings.TrimSpace(key)
		if !nameRe.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable name %q on line %d: %w", key, i, os.ErrInvalid)
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		vars = append(vars, [2]string{key, value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// UpdateEnv sets the variables from the file that are not already set in the
// environment. A missing file is not an error.
func UpdateEnv(fpath string) error {
	fp, err := os.Open(fpath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer fp.Close()

	vars, err := Parse(fp)
	if err != nil {
		return fmt.Errorf("could not parse env file %q: %w", fpath, err)
	}
	for _, kv := range vars {
		if len(os.Getenv(kv[0])) != 0 {
			continue
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}
