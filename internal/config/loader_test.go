package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "set variable",
			in:   "host: ${TEST_DB_HOST}",
			want: "host: db.internal",
		},
		{
			name: "set variable ignores default",
			in:   "host: ${TEST_DB_HOST:localhost}",
			want: "host: db.internal",
		},
		{
			name: "unset variable uses default",
			in:   "port: ${TEST_DB_PORT:5432}",
			want: "port: 5432",
		},
		{
			name: "unset variable with empty default",
			in:   "password: ${TEST_DB_PASSWORD:}",
			want: "password: ",
		},
		{
			name: "unset variable without default kept verbatim",
			in:   "secret: ${TEST_JWT_SECRET}",
			want: "secret: ${TEST_JWT_SECRET}",
		},
		{
			name: "multiple placeholders",
			in:   "dsn: ${TEST_DB_HOST}:${TEST_DB_PORT:5432}",
			want: "dsn: db.internal:5432",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}
