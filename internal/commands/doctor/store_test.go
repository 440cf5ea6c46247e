package doctor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/store/sqlite"
)

func TestStoreCheck_NoDatabase(t *testing.T) {
	check := NewStoreCheck(filepath.Join(t.TempDir(), "missing.db"), false)
	result := check.Run(context.Background())

	assert.Equal(t, "Forum Store", result.Name)
	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "first use")
}

func TestStoreCheck_CleanDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "symposium.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateForum(ctx, forum.Forum{
		ID:    "frm_1",
		Name:  "The Trial",
		Mode:  forum.ModeDebate,
		State: forum.StateCreated,
	}))
	require.NoError(t, store.Close())

	check := NewStoreCheck(path, false)
	result := check.Run(ctx)

	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "1 forum(s)")
	assert.Equal(t, StatusPass, result.Items[1].Status)
	assert.Equal(t, "No orphans", result.Items[1].Label)
}

func TestSummaryCounts(t *testing.T) {
	results := []Result{
		{Items: []CheckItem{
			{Status: StatusPass},
			{Status: StatusWarn, Fixable: true},
		}},
		{Items: []CheckItem{
			{Status: StatusFail},
			{Status: StatusPass},
		}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, CountFixable(results))
}
