package sqlstore

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/mamadbah2/farmperf/internal/repository"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		notFound    bool
		unavailable bool
	}{
		{name: "nil", err: nil},
		{name: "record not found", err: gorm.ErrRecordNotFound, notFound: true},
		{name: "driver failure", err: errors.New("dial tcp: connection refused"), unavailable: true},
		{name: "cancelled", err: context.Canceled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("op", tc.err)
			if tc.err == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if errors.Is(got, repository.ErrNotFound) != tc.notFound {
				t.Fatalf("ErrNotFound mismatch for %v", got)
			}
			if errors.Is(got, repository.ErrUnavailable) != tc.unavailable {
				t.Fatalf("ErrUnavailable mismatch for %v", got)
			}
			if !errors.Is(got, tc.err) && !tc.notFound {
				t.Fatalf("expected original error to stay in the chain: %v", got)
			}
		})
	}
}
