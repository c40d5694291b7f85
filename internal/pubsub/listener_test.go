package pubsub_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/pubsub"
	"github.com/photonhq/photon/internal/selection"
)

func TestContinuousListener_SelectionChannel(t *testing.T) {
	ch := selection.New()
	defer ch.Close()

	giss := dataset.Reference{URL: "https://example.org/giss.csv", Format: dataset.FormatCSV, Variable: "J-D"}
	modis := dataset.Reference{URL: "https://example.org/modis.nc", Format: dataset.FormatNetCDF, Variable: "sst"}
	ch.Select(giss)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var sub pubsub.Subscriber[selection.Selection] = ch
	listener := pubsub.NewContinuousListener(ctx, sub)

	// The selection made before subscribing is replayed first.
	msg := listener.Listen()()
	event, ok := msg.(pubsub.Event[selection.Selection])
	require.True(t, ok, "got %T", msg)
	require.Equal(t, pubsub.SelectedEvent, event.Type)
	require.Equal(t, giss, event.Payload.Ref)
	require.True(t, event.Payload.Present)

	ch.Select(modis)
	event = listener.Listen()().(pubsub.Event[selection.Selection])
	require.Equal(t, modis, event.Payload.Ref)

	ch.Clear()
	event = listener.Listen()().(pubsub.Event[selection.Selection])
	require.Equal(t, pubsub.ClearedEvent, event.Type)
	require.False(t, event.Payload.Present)
}

func TestContinuousListener_SelectionChannelClosed(t *testing.T) {
	ch := selection.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := pubsub.NewContinuousListener[selection.Selection](ctx, ch)

	ch.Close()
	require.Nil(t, listener.Listen()())
}
