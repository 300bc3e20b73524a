//go:build integration

package rod_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pricecap"
	"github.com/fwojciec/pricecap/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_RecyclesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(3))
	require.NoError(t, err)
	defer manager.Close()

	firstBrowser := manager.Browser()
	require.NotNil(t, firstBrowser)

	for range 3 {
		page, err := manager.Page(context.Background())
		require.NoError(t, err)
		require.NoError(t, page.Close())
	}

	secondBrowser := manager.Browser()
	require.NotNil(t, secondBrowser)
	assert.NotSame(t, firstBrowser, secondBrowser)
}

func TestBrowserManager_DoesNotRecycleBeforeMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
	require.NoError(t, err)
	defer manager.Close()

	firstBrowser := manager.Browser()
	require.NotNil(t, firstBrowser)

	for range 2 {
		page, err := manager.Page(context.Background())
		require.NoError(t, err)
		require.NoError(t, page.Close())
	}

	assert.Same(t, firstBrowser, manager.Browser())
}

func TestBrowserManager_Page_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())

	_, err = manager.Page(context.Background())
	require.Error(t, err)
	assert.Equal(t, pricecap.EINVALID, pricecap.ErrorCode(err))
}
