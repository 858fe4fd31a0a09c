package filter

import "testing"

func TestRemoveThinkBlocks(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"single block", "keep1<think>drop</think>keep2", "keep1keep2"},
		{"no markers unchanged", "plain text", "plain text"},
		{"multiple blocks", "a<think>x</think>b<think>y</think>c", "abc"},
		{"spans newlines", "a<think>line1\nline2\n</think>b", "ab"},
		{"nearest close wins", "a<think>x</think>mid</think>b", "amid</think>b"},
		{"unterminated opener left as-is", "a<think>never closed", "a<think>never closed"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemoveThinkBlocks(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestRemoveThinkBlocksIdempotent(t *testing.T) {
	in := "keep1<think>drop</think>keep2"
	once := RemoveThinkBlocks(in)
	if twice := RemoveThinkBlocks(once); twice != once {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}
