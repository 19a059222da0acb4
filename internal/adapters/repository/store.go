// Package repository holds the session's regional datasets and the persisted
// student profile.
package repository

import (
	"context"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// ProfileKey is the fixed key the single counseling profile is stored under.
const ProfileKey = "counseling_student"

// DatasetStore provides read/write access to the loaded athletic records.
type DatasetStore interface {
	// ReplaceRegion swaps every record of region. Nil records remove it.
	ReplaceRegion(ctx context.Context, region string, records []model.AthleticRecord)

	// Population returns the outlier-filtered values of def for the gender
	// partition, and whether the result came from the cache. The slice is
	// the caller's own copy.
	Population(ctx context.Context, def event.Definition, filter model.GenderFilter) ([]float64, bool)

	// Regions lists the loaded regions, sorted.
	Regions(ctx context.Context) []string

	// Count returns the number of records held per region.
	Count(ctx context.Context) map[string]int
}

// ProfileStore persists the counseling profile.
type ProfileStore interface {
	// Load returns ErrNotFound when no profile has been saved yet.
	Load(ctx context.Context) (model.StudentProfile, error)
	Save(ctx context.Context, p model.StudentProfile) error
	Close() error
}
