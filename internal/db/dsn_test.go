package db

import (
	"strings"
	"testing"
)

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"postgres://u:p@h:5432/db?sslmode=disable", "postgres://u:p@h:5432/db?sslmode=disable"},
		{`  "postgresql://u@h/db"  `, "postgresql://u@h/db"},
		{"host=localhost user=app dbname=optotask", "host=localhost user=app dbname=optotask sslmode=disable"},
		{"host=localhost   user=app  sslmode=require", "host=localhost user=app sslmode=require"},
		{"not a dsn at all", "not a dsn at all"},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h password=secret dbname=d"); strings.Contains(got, "secret") {
		t.Fatalf("password leaked: %s", got)
	}
	if got := MaskDSN("postgres://app:secret@h/db"); strings.Contains(got, "secret") {
		t.Fatalf("url password leaked: %s", got)
	}
}
