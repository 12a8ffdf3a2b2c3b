package services

import (
	"testing"
	"time"
)

func TestGraceExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		deletedAt time.Time
		want      bool
	}{
		{
			name:      "just_deleted",
			deletedAt: now,
			want:      false,
		},
		{
			name:      "inside_window",
			deletedAt: now.Add(-23 * time.Hour),
			want:      false,
		},
		{
			name:      "exactly_at_window",
			deletedAt: now.Add(-GracePeriod),
			want:      false,
		},
		{
			name:      "one_second_past",
			deletedAt: now.Add(-GracePeriod - time.Second),
			want:      true,
		},
		{
			name:      "long_expired",
			deletedAt: now.Add(-72 * time.Hour),
			want:      true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GraceExpired(tc.deletedAt, now)
			if got != tc.want {
				t.Fatalf("GraceExpired(%v, %v)=%v, want %v", tc.deletedAt, now, got, tc.want)
			}
		})
	}
}

func TestGraceCutoffAgreesWithGraceExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cutoff := GraceCutoff(now)
	if GraceExpired(cutoff, now) {
		t.Fatalf("deletion exactly at cutoff must still be restorable")
	}
	if !GraceExpired(cutoff.Add(-time.Second), now) {
		t.Fatalf("deletion before cutoff must be expired")
	}
}
