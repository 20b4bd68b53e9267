package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Senior Engineer", "senior-engineer"},
		{"  Machine Learning  ", "machine-learning"},
		{"C++ Developer (Remote)", "c-developer-remote"},
		{"foo_bar_baz", "foo-bar-baz"},
		{"--already-hyphenated--", "already-hyphenated"},
		{"", ""},
		{"!!!", ""},
		{"Staff SWE,   Infra", "staff-swe-infra"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

// Hash values here are pinned against the published URL scheme. These are
// wire-format constants: if one of these cases fails, existing links break.
func TestHashKnownValues(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "0"},
		{"a", "2p"},
		{"abc123", "nk2mb4"},
		{"job-7421", "ri5zpw"},
		{"greenhouse-1234567", "hnbst8"},
		{"openai", "gpo83y"},
		{"hello world", "to5x38"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Hash(tc.in), "Hash(%q)", tc.in)
	}
}

func TestHashDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		require.Equal(t, Hash("abc123"), Hash("abc123"))
	}
}

// "Aa" and "BB" collide under the 31-multiplier hash. The slug scheme
// accepts this: lookup by hash resolves to the first record in dataset
// order, and this test documents that two distinct ids can share a hash.
func TestHashCollision(t *testing.T) {
	require.Equal(t, Hash("Aa"), Hash("BB"))
	require.NotEqual(t, "Aa", "BB")
}

func TestGenerateJobSlug(t *testing.T) {
	company, value := GenerateJobSlug("Senior Engineer", "abc123", "OpenAI")
	require.Equal(t, "openai", company)
	require.Equal(t, "senior-engineer-nk2mb4", value)

	// Empty title degrades to just the hash, never a leading hyphen.
	_, value = GenerateJobSlug("", "abc123", "OpenAI")
	require.Equal(t, "nk2mb4", value)
}

func TestGenerateJobSlugDeterministic(t *testing.T) {
	c1, v1 := GenerateJobSlug("Senior Engineer", "abc123", "OpenAI")
	c2, v2 := GenerateJobSlug("Senior Engineer", "abc123", "OpenAI")
	require.Equal(t, c1, c2)
	require.Equal(t, v1, v2)
}

func TestParseJobSlug(t *testing.T) {
	require.Equal(t, "nk2mb4", ParseJobSlug("senior-engineer-nk2mb4"))
	// Legacy single-token slug is just the hash.
	require.Equal(t, "nk2mb4", ParseJobSlug("nk2mb4"))
	require.Equal(t, "", ParseJobSlug(""))
	require.Equal(t, "", ParseJobSlug("   "))
}

func TestParseJobPath(t *testing.T) {
	company, value, ok := ParseJobPath("openai/senior-engineer-nk2mb4")
	require.True(t, ok)
	require.Equal(t, "openai", company)
	require.Equal(t, "senior-engineer-nk2mb4", value)

	// Legacy single-segment form.
	company, value, ok = ParseJobPath("senior-engineer-nk2mb4")
	require.True(t, ok)
	require.Equal(t, "", company)
	require.Equal(t, "senior-engineer-nk2mb4", value)

	_, _, ok = ParseJobPath("")
	require.False(t, ok)
	_, _, ok = ParseJobPath("a/b/c")
	require.False(t, ok)
	_, _, ok = ParseJobPath("openai/")
	require.False(t, ok)
}

func TestSlugRoundTrip(t *testing.T) {
	company, value, ok := ParseJobPath(JobPath("Senior Engineer", "abc123", "OpenAI"))
	require.True(t, ok)
	require.Equal(t, Slugify("OpenAI"), company)
	require.Equal(t, Hash("abc123"), ParseJobSlug(value))
}
