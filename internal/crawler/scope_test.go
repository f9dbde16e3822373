package crawler

import (
	"testing"

	"github.com/reconforge/netrecon/internal/model"
)

func TestIsCrawlable(t *testing.T) {
	t.Parallel()

	target, err := model.NewCrawlTarget("https://example.com")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"same host root", "https://example.com/", true},
		{"same host path", "https://example.com/about", true},
		{"http scheme on same host", "http://example.com/page", true},
		{"query string kept", "https://example.com/search?q=1", true},
		{"subdomain is out of scope", "https://www.example.com/", false},
		{"different host", "https://other.com/", false},
		{"different port", "https://example.com:8443/", false},
		{"ftp scheme", "ftp://example.com/file", false},
		{"pdf excluded", "https://example.com/report.pdf", false},
		{"uppercase extension excluded", "https://example.com/IMG.PNG", false},
		{"jpeg excluded", "https://example.com/photo.jpeg", false},
		{"zip excluded", "https://example.com/dist.zip", false},
		{"exe excluded", "https://example.com/setup.exe", false},
		{"extension in query not excluded", "https://example.com/view?file=a.pdf", true},
		{"unparseable url", "https://example.com/%zz%", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsCrawlable(tt.url, target); got != tt.want {
				t.Errorf("IsCrawlable(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsCrawlableWithPortInTarget(t *testing.T) {
	t.Parallel()

	target, err := model.NewCrawlTarget("http://example.com:8080")
	if err != nil {
		t.Fatal(err)
	}

	if !IsCrawlable("http://example.com:8080/admin", target) {
		t.Error("URL on the target's port should be crawlable")
	}
	if IsCrawlable("http://example.com/admin", target) {
		t.Error("URL without the target's port should be out of scope")
	}
}
