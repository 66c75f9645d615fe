package crawler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextChildFirstSibling(t *testing.T) {
	t.Parallel()

	id, err := NextChild("", nil)
	require.NoError(t, err)
	assert.Equal(t, CategoryID("001"), id)

	id, err = NextChild("001", []CategoryID{"001", "002"})
	require.NoError(t, err)
	assert.Equal(t, CategoryID("001001"), id)
}

func TestNextChildSuccessorOfMax(t *testing.T) {
	t.Parallel()

	known := []CategoryID{"001", "002", "012", "001005", "003001"}
	id, err := NextChild("", known)
	require.NoError(t, err)
	assert.Equal(t, CategoryID("013"), id)

	id, err = NextChild("001", known)
	require.NoError(t, err)
	assert.Equal(t, CategoryID("001006"), id)
}

func TestNextChildIgnoresDeeperDescendants(t *testing.T) {
	t.Parallel()

	// 002001001 is a grandchild of 002, not a direct child.
	id, err := NextChild("002", []CategoryID{"002001", "002001001"})
	require.NoError(t, err)
	assert.Equal(t, CategoryID("002002"), id)
}

func TestNextChildProperties(t *testing.T) {
	t.Parallel()

	parents := []CategoryID{"", "005", "010007"}
	known := []CategoryID{"004", "005", "005001", "005002", "010007", "010007009"}

	for _, parent := range parents {
		parent := parent
		t.Run(fmt.Sprintf("parent=%q", parent), func(t *testing.T) {
			t.Parallel()

			id, err := NextChild(parent, known)
			require.NoError(t, err)

			assert.True(t, id.IsDirectChildOf(parent))
			assert.Equal(t, parent.Level()+1, id.Level())
			assert.Len(t, id.String(), len(parent)+SegmentWidth)
			for _, k := range known {
				if k.IsDirectChildOf(parent) {
					assert.Greater(t, id, k)
				}
			}
		})
	}
}

func TestSuccessorZeroPadding(t *testing.T) {
	t.Parallel()

	id, err := CategoryID("012").Successor()
	require.NoError(t, err)
	assert.Equal(t, CategoryID("013"), id)

	id, err = CategoryID("001099").Successor()
	require.NoError(t, err)
	assert.Equal(t, CategoryID("001100"), id)
}

func TestSuccessorOverflow(t *testing.T) {
	t.Parallel()

	_, err := CategoryID("999").Successor()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSegmentOverflow))

	_, err = NextChild("", []CategoryID{"999"})
	assert.True(t, errors.Is(err, ErrSegmentOverflow))
}

func TestParseCategoryID(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		id, err := ParseCategoryID("001002")
		require.NoError(t, err)
		assert.Equal(t, 2, id.Level())
		assert.Equal(t, CategoryID("001"), id.Parent())
	})
	t.Run("Root", func(t *testing.T) {
		id, err := ParseCategoryID("")
		require.NoError(t, err)
		assert.Equal(t, 0, id.Level())
	})
	t.Run("BadWidth", func(t *testing.T) {
		_, err := ParseCategoryID("0012")
		assert.Error(t, err)
	})
	t.Run("NonDigit", func(t *testing.T) {
		_, err := ParseCategoryID("00a")
		assert.Error(t, err)
	})
}
