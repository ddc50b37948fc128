// Copyright (c) 2026 BVK Chaitanya

// Package wallets loads the wallet table with login credentials. The table
// has a header row with at least the name, address, sign and msg columns in
// any order. Field delimiter is detected from the header row.
package wallets

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bvk/shopwatch/metamon"
)

// Delimiters holds the candidate field delimiters in the order of preference.
const Delimiters = "\t ;,"

var columns = []string{"name", "address", "sign", "msg"}

var ErrNoDelimiter = errors.New("could not detect the field delimiter")

// Load reads wallet credentials from the table file.
func Load(fpath string) ([]*metamon.Credential, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("could not read wallets file: %w", err)
	}
	creds, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not parse wallets file %q: %w", fpath, err)
	}
	return creds, nil
}

// Parse reads wallet credentials from the table in r.
func Parse(r io.Reader) ([]*metamon.Credential, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	line, _, _ := strings.Cut(string(header), "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(strings.TrimSpace(line)) == 0 {
		return nil, fmt.Errorf("header row is empty: %w", os.ErrInvalid)
	}
	delim, err := DetectDelimiter(line)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read table rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("table has no header row: %w", os.ErrInvalid)
	}

	index, err := columnIndex(records[0], delim)
	if err != nil {
		return nil, err
	}

	var creds []*metamon.Credential
	for i, record := range records[1:] {
		record = normalize(record, delim)
		if isBlank(record) {
			continue
		}
		field := func(col string) string {
			if j := index[col]; j < len(record) {
				return strings.TrimSpace(record[j])
			}
			return ""
		}
		cred := &metamon.Credential{
			Name:    field("name"),
			Address: field("address"),
			Sign:    field("sign"),
			Msg:     field("msg"),
		}
		if err := cred.Check(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// DetectDelimiter picks the delimiter that splits the header row into all
// required columns. When no candidate yields the required columns, the
// candidate with most occurrences is chosen. Returns ErrNoDelimiter when
// none of the candidates appear in the line.
func DetectDelimiter(line string) (rune, error) {
	best, bestCount := rune(0), 0
	for _, d := range Delimiters {
		n := strings.Count(line, string(d))
		if n == 0 {
			continue
		}
		if hasColumns(normalize(strings.Split(line, string(d)), d)) {
			return d, nil
		}
		if n > bestCount {
			best, bestCount = d, n
		}
	}
	if bestCount == 0 {
		return 0, ErrNoDelimiter
	}
	return best, nil
}

func columnIndex(header []string, delim rune) (map[string]int, error) {
	header = normalize(header, delim)
	index := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("required column %q is missing: %w", col, os.ErrInvalid)
		}
	}
	return index, nil
}

func hasColumns(fields []string) bool {
	for _, col := range columns {
		if !slices.ContainsFunc(fields, func(f string) bool {
			return strings.EqualFold(strings.TrimSpace(f), col)
		}) {
			return false
		}
	}
	return true
}

// normalize drops the empty fields produced by repeated spaces when space is
// the delimiter.
func normalize(fields []string, delim rune) []string {
	if delim != ' ' {
		return fields
	}
	return slices.DeleteFunc(slices.Clone(fields), func(s string) bool {
		return len(s) == 0
	})
}

func isBlank(record []string) bool {
	for _, f := range record {
		if len(strings.TrimSpace(f)) != 0 {
			return false
		}
	}
	return true
}
