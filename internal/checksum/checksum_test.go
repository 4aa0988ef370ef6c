package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Sum([]byte("abc")); got != want {
		t.Errorf("Sum = %s, want %s", got, want)
	}
}

func TestETag(t *testing.T) {
	got := ETag([]byte("abc"))
	if got != `"ba7816bf8f01cfea414140de5dae2223"` {
		t.Errorf("ETag = %s", got)
	}
	if ETag([]byte("abc")) == ETag([]byte("abd")) {
		t.Error("different content produced the same tag")
	}
}

func TestMatch(t *testing.T) {
	etag := `"abc"`
	tests := []struct {
		header string
		want   bool
	}{
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`*`, true},
		{`"abcd"`, false},
		{``, false},
		{`abc`, false},
	}
	for _, tt := range tests {
		if got := Match(tt.header, etag); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
