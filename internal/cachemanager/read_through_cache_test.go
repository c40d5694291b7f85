package cachemanager_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/photonhq/photon/internal/cachemanager"
	"github.com/photonhq/photon/internal/mocks"
)

type hit struct {
	ID    string
	Score float64
}

type searchInput struct {
	Query string
	Limit int
}

func loader(calls *int) func(context.Context, searchInput) ([]hit, error) {
	return func(ctx context.Context, in searchInput) ([]hit, error) {
		*calls++
		return []hit{{ID: in.Query, Score: float64(in.Limit)}}, nil
	}
}

func TestReadThroughCache_Bypass(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []hit](t)
	calls := 0
	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](managerMock, loader(&calls), true)

	got, cached, err := rtc.Get(context.Background(), "k", searchInput{Query: "rain", Limit: 3}, time.Minute)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, []hit{{ID: "rain", Score: 3}}, got)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_Get_Hit(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []hit](t)
	managerMock.EXPECT().Get(mock.Anything, "k").Return([]hit{{ID: "cached"}}, true)

	calls := 0
	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](managerMock, loader(&calls), false)

	got, cached, err := rtc.Get(context.Background(), "k", searchInput{Query: "rain"}, time.Minute)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, []hit{{ID: "cached"}}, got)
	require.Zero(t, calls, "loader must not run on a hit")
}

func TestReadThroughCache_Get_MissStores(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []hit](t)
	managerMock.EXPECT().Get(mock.Anything, "k").Return(nil, false)
	managerMock.EXPECT().Set(mock.Anything, "k", []hit{{ID: "rain", Score: 2}}, time.Minute).Return()

	calls := 0
	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](managerMock, loader(&calls), false)

	got, cached, err := rtc.Get(context.Background(), "k", searchInput{Query: "rain", Limit: 2}, time.Minute)
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, []hit{{ID: "rain", Score: 2}}, got)
}

func TestReadThroughCache_Get_ErrorNotCached(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []hit](t)
	managerMock.EXPECT().Get(mock.Anything, "k").Return(nil, false)

	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](
		managerMock,
		func(ctx context.Context, in searchInput) ([]hit, error) {
			return nil, errors.New("service unavailable")
		},
		false,
	)

	_, _, err := rtc.Get(context.Background(), "k", searchInput{}, time.Minute)
	require.Error(t, err)
	managerMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh_Hit(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []hit](t)
	managerMock.EXPECT().GetWithRefresh(mock.Anything, "k", time.Minute).Return([]hit{{ID: "cached"}}, true)

	calls := 0
	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](managerMock, loader(&calls), false)

	got, cached, err := rtc.GetWithRefresh(context.Background(), "k", searchInput{}, time.Minute)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, []hit{{ID: "cached"}}, got)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []hit](t)
	managerMock.EXPECT().Delete(mock.Anything, "k").Return(nil)

	calls := 0
	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](managerMock, loader(&calls), false)
	require.NoError(t, rtc.Invalidate(context.Background(), "k"))
}

func TestReadThroughCache_WithInMemoryManager(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[string, []hit]("search", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	calls := 0
	rtc := cachemanager.NewReadThroughCache[string, []hit, searchInput](cache, loader(&calls), false)

	in := searchInput{Query: "ocean", Limit: 5}
	_, cached, err := rtc.Get(context.Background(), "ocean|5", in, time.Minute)
	require.NoError(t, err)
	require.False(t, cached)

	_, cached, err = rtc.Get(context.Background(), "ocean|5", in, time.Minute)
	require.NoError(t, err)
	require.True(t, cached)
	require.Equal(t, 1, calls)
}
