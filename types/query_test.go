package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQueryKeepsShortText(t *testing.T) {
	text := strings.Repeat("a", TruncateLimit)
	q := NewQuery([]Source{{Database: "d", Table: "t"}}, 100, QueryTypeInsert, text, 4, 50, 23, 523, 54)

	assert.Equal(t, text, q.Query)
	assert.False(t, q.IsTruncated)
	assert.Equal(t, int64(4), q.EventStart)
	assert.Equal(t, int64(50), q.EventLength)
	assert.Equal(t, int64(23), q.QueryStart)
	assert.Equal(t, int64(523), q.QueryEnd)
	assert.Equal(t, int64(54), q.RelatedEventsEndPos)
}

func TestNewQueryTruncatesLongText(t *testing.T) {
	head := strings.Repeat("a", TruncateHead)
	middle := strings.Repeat("b", 200)
	tail := strings.Repeat("c", TruncateTail)
	text := head + middle + tail // 700 characters

	q := NewQuery(nil, 0, QueryTypeUpdate, text, 0, 0, 19, 719, 0)

	assert.True(t, q.IsTruncated)
	assert.Len(t, q.Query, TruncateHead+3+TruncateTail)
	assert.Equal(t, head+"..."+tail, q.Query)
	// Offsets always describe the original text.
	assert.Equal(t, int64(719), q.QueryEnd)
}

func TestNewQueryTruncatesAtExactBoundary(t *testing.T) {
	text := strings.Repeat("x", TruncateLimit+1)
	q := NewQuery(nil, 0, QueryTypeDelete, text, 0, 0, 0, 0, 0)
	assert.True(t, q.IsTruncated)
	assert.Len(t, q.Query, TruncateHead+3+TruncateTail)
}

func TestNewQueryCountsRunesNotBytes(t *testing.T) {
	// 500 two-byte characters stay untouched even though the byte length
	// is past the limit.
	text := strings.Repeat("é", TruncateLimit)
	q := NewQuery(nil, 0, QueryTypeInsert, text, 0, 0, 0, 0, 0)
	assert.False(t, q.IsTruncated)
	assert.Equal(t, text, q.Query)
}
