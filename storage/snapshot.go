package storage

import (
	"context"
	"fmt"
	"strings"
)

const snapshotContentType = "application/json"

// SnapshotStore publishes generated bracket JSON to the object store so
// spectator frontends can fetch the current structure without hitting the
// API.
type SnapshotStore struct {
	uploader FileUploader
}

func NewSnapshotStore(uploader FileUploader) *SnapshotStore {
	return &SnapshotStore{uploader: uploader}
}

func snapshotKey(tournamentID int) string {
	return fmt.Sprintf("brackets/tournament_%d.json", tournamentID)
}

// PutBracket uploads the bracket JSON and returns the object key and its
// public URL.
func (s *SnapshotStore) PutBracket(ctx context.Context, tournamentID int, dataJSON string) (key string, publicURL string, err error) {
	key = snapshotKey(tournamentID)
	result, err := s.uploader.Upload(ctx, key, snapshotContentType, strings.NewReader(dataJSON))
	if err != nil {
		return "", "", fmt.Errorf("failed to upload bracket snapshot for tournament %d: %w", tournamentID, err)
	}
	return result.Key, result.Location, nil
}

func (s *SnapshotStore) DeleteBracket(ctx context.Context, tournamentID int) error {
	return s.uploader.Delete(ctx, snapshotKey(tournamentID))
}

func (s *SnapshotStore) PublicURL(key string) string {
	return s.uploader.GetPublicURL(key)
}
