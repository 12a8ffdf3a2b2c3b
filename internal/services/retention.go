package services

import "time"

// GracePeriod is the window after soft-deletion during which an entity can
// still be restored. Past it the entity is purge-eligible.
const GracePeriod = 24 * time.Hour

// GraceExpired is the single place the window is evaluated; the restore path,
// the read path and the sweeper all defer to it.
func GraceExpired(deletedAt, now time.Time) bool {
	return now.Sub(deletedAt) > GracePeriod
}

// GraceCutoff returns the instant before which a deletion mark counts as
// expired.
func GraceCutoff(now time.Time) time.Time {
	return now.Add(-GracePeriod)
}
