package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/danejoe001/transfer/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repoImplementations(t *testing.T) map[string]repository.Repository {
	t.Helper()
	mem := repository.NewMemoryRepository()

	badgerRepo, err := repository.NewBadgerRepository(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerRepo.Close() })

	return map[string]repository.Repository{
		"memory": mem,
		"badger": badgerRepo,
	}
}

func TestRepositoryGetPutDelete(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repoImplementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(ctx, 404)
			assert.ErrorIs(t, err, repository.ErrNotFound)

			info := repository.FileInfo{
				FileID:    1,
				Path:      "/movies/one.mp4",
				FileName:  "one.mp4",
				FileSize:  1 << 20,
				MD5Code:   "d41d8cd98f00b204e9800998ecf8427e",
				UpdatedAt: time.Now().Truncate(time.Second),
			}
			require.NoError(t, repo.Put(ctx, info))

			got, err := repo.Get(ctx, info.FileID)
			require.NoError(t, err)
			assert.Equal(t, info.Path, got.Path)
			assert.Equal(t, info.FileName, got.FileName)
			assert.Equal(t, info.FileSize, got.FileSize)
			assert.Equal(t, info.MD5Code, got.MD5Code)

			require.NoError(t, repo.Delete(ctx, info.FileID))
			_, err = repo.Get(ctx, info.FileID)
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestRepositoryList(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repoImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Put(ctx, repository.FileInfo{FileID: 1, Path: "/a"}))
			require.NoError(t, repo.Put(ctx, repository.FileInfo{FileID: 2, Path: "/b"}))

			infos, err := repo.List(ctx)
			require.NoError(t, err)
			ids := make([]int64, 0, len(infos))
			for _, info := range infos {
				ids = append(ids, info.FileID)
			}
			assert.ElementsMatch(t, []int64{1, 2}, ids)
		})
	}
}

func TestRepositoryDeleteMissingIsNotError(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repoImplementations(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, repo.Delete(ctx, 999))
		})
	}
}

func TestRepositoryPutOverwrites(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repoImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Put(ctx, repository.FileInfo{FileID: 1, FileSize: 1}))
			require.NoError(t, repo.Put(ctx, repository.FileInfo{FileID: 1, FileSize: 2}))

			got, err := repo.Get(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(2), got.FileSize)
		})
	}
}
