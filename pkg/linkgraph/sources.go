package linkgraph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lioia/topic-hits/pkg/utils"
	"golang.org/x/time/rate"
)

// Documents of a directory are resolved against this base, so that
// relative links between files map back to file names
var corpusBase = &url.URL{Scheme: "file", Host: "corpus", Path: "/"}

func pageID(name string) string {
	return strings.TrimSuffix(path.Base(name), path.Ext(name))
}

// FromDirectory parses every *.html file of dir. A page is identified by
// its file name without extension and links are matched by file name
func FromDirectory(dir string) (*Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	pages := make([]Page, 0, len(files))
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		base := corpusBase.JoinPath(filepath.Base(file))
		links, text, err := Parse(f, base)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		pages = append(pages, Page{ID: pageID(file), Links: links, Text: text})
	}
	utils.NodeLog("linkgraph", "Parsed corpus", "dir", dir, "pages", len(pages))

	return Build(pages, func(target string) (string, bool) {
		u, err := url.Parse(target)
		if err != nil || u.Scheme != corpusBase.Scheme || u.Host != corpusBase.Host {
			return "", false
		}
		return pageID(u.Path), true
	}), nil
}

type Fetcher struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// Fetcher issuing at most perSecond requests per second
func NewFetcher(perSecond float64, timeout time.Duration) *Fetcher {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// FromURLs downloads every page of urls; a page is identified by its
// normalized URL and only links between listed URLs are kept. Pages that
// cannot be fetched stay in the universe without links
func (f *Fetcher) FromURLs(ctx context.Context, urls []string) (*Result, error) {
	pages := make([]Page, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid url %q: %w", raw, err)
		}
		page := Page{ID: Normalize(u)}
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
		links, text, err := f.fetch(ctx, u)
		if err != nil {
			utils.WarnLog("linkgraph", "Could not fetch page", "url", raw, "err", err)
		}
		page.Links, page.Text = links, text
		pages = append(pages, page)
	}
	return Build(pages, func(target string) (string, bool) {
		return target, true
	}), nil
}

func (f *Fetcher) fetch(ctx context.Context, u *url.URL) ([]string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("status %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, "", fmt.Errorf("not an html page: %s", ct)
	}
	return Parse(resp.Body, resp.Request.URL)
}
