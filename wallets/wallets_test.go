// Copyright (c) 2026 BVK Chaitanya

package wallets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{"name\taddress\tsign\tmsg", '\t'},
		{"name address sign msg", ' '},
		{"name;address;sign;msg", ';'},
		{"name,address,sign,msg", ','},
		{"name, address, sign, msg", ','},
		{"Name;Address;Sign;Msg;Comment with spaces", ';'},
		{"a,b;c;d", ';'},
	}
	for _, test := range tests {
		got, err := DetectDelimiter(test.line)
		if err != nil {
			t.Errorf("%q: %v", test.line, err)
			continue
		}
		if got != test.want {
			t.Errorf("%q: want %q, got %q", test.line, test.want, got)
		}
	}

	if _, err := DetectDelimiter("nameaddresssignmsg"); !errors.Is(err, ErrNoDelimiter) {
		t.Fatalf("want ErrNoDelimiter, got %v", err)
	}
}

func TestParse(t *testing.T) {
	inputs := map[string]string{
		"tsv":   "name\taddress\tsign\tmsg\nalice\t0xa\t0xsa\tLogIn-a\n\nbob\t0xb\t0xsb\tLogIn-b\n",
		"csv":   "msg,sign,address,name\r\nLogIn-a,0xsa,0xa,alice\r\nLogIn-b,0xsb,0xb,bob\r\n",
		"space": "name  address sign msg\nalice 0xa  0xsa LogIn-a\nbob 0xb 0xsb LogIn-b\n",
		"extra": "id;name;address;sign;msg;note\n1;alice;0xa;0xsa;LogIn-a;x\n2;bob;0xb;0xsb;LogIn-b;y\n",
	}
	for name, input := range inputs {
		creds, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if len(creds) != 2 {
			t.Errorf("%s: want 2 wallets, got %d", name, len(creds))
			continue
		}
		if c := creds[0]; c.Name != "alice" || c.Address != "0xa" || c.Sign != "0xsa" || c.Msg != "LogIn-a" {
			t.Errorf("%s: unexpected first wallet %#v", name, c)
		}
		if c := creds[1]; c.Name != "bob" || c.Address != "0xb" || c.Sign != "0xsb" || c.Msg != "LogIn-b" {
			t.Errorf("%s: unexpected second wallet %#v", name, c)
		}
	}
}

func TestParseErrors(t *testing.T) {
	inputs := map[string]string{
		"empty":          "",
		"missing column": "name\taddress\tsign\nalice\t0xa\t0xsa\n",
		"no delimiter":   "nameaddresssignmsg\n",
		"empty address":  "name,address,sign,msg\nalice,,0xsa,LogIn\n",
	}
	for name, input := range inputs {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("%s: want error, got nil", name)
		}
	}
}

func TestLoad(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.tsv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}

	fpath := filepath.Join(t.TempDir(), "wallets.tsv")
	if err := os.WriteFile(fpath, []byte("name\taddress\tsign\tmsg\n\t0xa\t0xsa\tLogIn-a\n"), 0600); err != nil {
		t.Fatal(err)
	}
	creds, err := Load(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if len(creds) != 1 || creds[0].DisplayName() != "0xa" {
		t.Fatalf("want wallet without name to use the address, got %#v", creds)
	}
}
