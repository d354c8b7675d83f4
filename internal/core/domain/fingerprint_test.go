package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestFingerprintBytes(t *testing.T) {
	a := domain.FingerprintBytes([]byte("share.Y = 'Y is 1'\n"))
	b := domain.FingerprintBytes([]byte("share.Y = 'Y is 1'\n"))
	c := domain.FingerprintBytes([]byte("share.Y = 'Y is 3'\n"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a.String(), domain.FingerprintPrefix)
	assert.False(t, a.IsZero())
	assert.True(t, domain.Fingerprint("").IsZero())
}

func TestFingerprintSet_Diff(t *testing.T) {
	tests := []struct {
		name string
		prev domain.FingerprintSet
		cur  domain.FingerprintSet
		want domain.Diff
	}{
		{
			name: "nil previous makes everything new",
			prev: nil,
			cur:  domain.FingerprintSet{"/b": "1", "/a": "2"},
			want: domain.Diff{New: []string{"/a", "/b"}},
		},
		{
			name: "unchanged",
			prev: domain.FingerprintSet{"/a": "1"},
			cur:  domain.FingerprintSet{"/a": "1"},
			want: domain.Diff{},
		},
		{
			name: "new changed and deleted",
			prev: domain.FingerprintSet{"/a": "1", "/b": "2", "/c": "3"},
			cur:  domain.FingerprintSet{"/a": "1", "/b": "20", "/d": "4"},
			want: domain.Diff{New: []string{"/d"}, Changed: []string{"/b"}, Deleted: []string{"/c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cur.Diff(tt.prev)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Empty(), got.Empty())
		})
	}
}

func TestDiff_Touched(t *testing.T) {
	d := domain.Diff{New: []string{"/n"}, Changed: []string{"/z"}, Deleted: []string{"/a"}}
	assert.Equal(t, []string{"/a", "/z"}, d.Touched())
}

func TestCombine(t *testing.T) {
	set := domain.FingerprintSet{"/top.less": "1", "/q.less": "2"}

	first := domain.Combine([]string{"/top.less", "/q.less"}, set)
	again := domain.Combine([]string{"/top.less", "/q.less"}, set.Clone())
	assert.Equal(t, first, again)

	reordered := domain.Combine([]string{"/q.less", "/top.less"}, set)
	assert.NotEqual(t, first, reordered)

	set["/q.less"] = "3"
	assert.NotEqual(t, first, domain.Combine([]string{"/top.less", "/q.less"}, set))
}
