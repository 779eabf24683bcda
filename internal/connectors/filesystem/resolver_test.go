package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalPath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "file URI is converted to local path",
			uri:  "file:///Users/test/documents/file.txt",
			want: "/Users/test/documents/file.txt",
		},
		{
			name: "escaped spaces are decoded",
			uri:  "file:///Users/test/my%20documents/file.txt",
			want: "/Users/test/my documents/file.txt",
		},
		{
			name: "bare path passes through unchanged",
			uri:  "/Users/test/documents/file.txt",
			want: "/Users/test/documents/file.txt",
		},
		{
			name: "web URL passes through unchanged",
			uri:  "https://mail.google.com/mail/u/0/#inbox/abc",
			want: "https://mail.google.com/mail/u/0/#inbox/abc",
		},
		{
			name: "empty string",
			uri:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalPath(tt.uri))
		})
	}
}

func TestFileURL_RoundTrip(t *testing.T) {
	for _, p := range []string{"/tmp/notes.txt", "/tmp/my documents/plan.md", "/tmp/100%/x.txt"} {
		assert.Equal(t, p, LocalPath(FileURL(p)), p)
	}
	assert.Equal(t, "file:///tmp/my%20documents/plan.md", FileURL("/tmp/my documents/plan.md"))
}
