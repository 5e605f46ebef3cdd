package memalloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/synchro/memalloc"
)

func TestBudgetReserveRespectsLimit(t *testing.T) {
	b := memalloc.NewBudget(100)
	require.NoError(t, b.Reserve(60))
	require.NoError(t, b.Reserve(40))
	require.Error(t, b.Reserve(1))
	require.Equal(t, int64(100), b.Used())
}

func TestBudgetReleaseFreesSpace(t *testing.T) {
	b := memalloc.NewBudget(100)
	require.NoError(t, b.Reserve(100))
	b.Release(50)
	require.Equal(t, int64(50), b.Used())
	require.NoError(t, b.Reserve(50))
}

func TestAllocHeapPathSmallBuffer(t *testing.T) {
	b := memalloc.NewBudget(0)
	buf, err := memalloc.Alloc(b, 64)
	require.NoError(t, err)
	require.Len(t, buf.Bytes(), 64)
	require.NoError(t, buf.Free())
}

func TestAllocRejectsOverBudget(t *testing.T) {
	b := memalloc.NewBudget(32)
	_, err := memalloc.Alloc(b, 64)
	require.Error(t, err)
}

func TestGrowPreservesPrefix(t *testing.T) {
	b := memalloc.NewBudget(0)
	buf, err := memalloc.Alloc(b, 16)
	require.NoError(t, err)
	copy(buf.Bytes(), []byte("hello world12345"))
	require.NoError(t, buf.Grow(32))
	require.Equal(t, []byte("hello world12345"), buf.Bytes()[:16])
	require.NoError(t, buf.Free())
}
