package repoerr

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, ErrRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: app_setting.key"), ErrConflict},
		{"canceled", context.Canceled, ErrRetryable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Map("op", tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("Map(%v): want %v got %v", tc.err, tc.want, got)
			}
		})
	}
	if Map("op", nil) != nil {
		t.Fatal("nil should stay nil")
	}
	plain := errors.New("boom")
	if got := Map("op", plain); !errors.Is(got, plain) || errors.Is(got, ErrNotFound) {
		t.Fatalf("plain: %v", got)
	}
}
