package main

import (
	"context"
	"testing"

	"github.com/ajwerner/fasttrie/cmd/fasttrie-bench/config"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestRunVerified(t *testing.T) {
	for _, args := range [][]string{
		{"--width=12", "--ops=20000", "--key-range=500"},
		{"--width=64", "--ops=5000", "--key-range=300", "--split-policy=threshold"},
		{"--width=3", "--ops=2000", "--add-ratio=0.6", "--remove-ratio=0.4"},
	} {
		cfg := config.NewConfig()
		require.NoError(t, cfg.Parse(args))
		s, st, err := run(context.Background(), cfg)
		require.NoError(t, err, "%v", args)
		require.Equal(t, cfg.Ops, st.adds+st.removes+st.finds)
		require.Equal(t, st.added-st.removed, s.Len())
		require.Greater(t, estimateSize(s), 0.0)
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := config.NewConfig()
	require.NoError(t, cfg.Parse([]string{"--ops=10"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := run(ctx, cfg)
	require.Equal(t, context.Canceled, errors.Cause(err))
}

func TestOracle(t *testing.T) {
	o := newOracle()
	require.True(t, o.add(5))
	require.False(t, o.add(5))
	require.True(t, o.add(9))
	got, ok := o.find(8)
	require.True(t, ok)
	require.Equal(t, uint64(5), got)
	_, ok = o.find(4)
	require.False(t, ok)
	require.True(t, o.remove(5))
	require.False(t, o.remove(5))
}
