// Package social scrapes public metadata of short-form cooking videos.
package social

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bonchef/internal/domain"
	"bonchef/internal/fetcher"
	"bonchef/internal/infra"
)

// Platform identifies a supported video platform.
type Platform string

const (
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
)

// PlatformOf resolves the platform of a video URL.
func PlatformOf(rawURL string) (Platform, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	switch {
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com") || host == "instagr.am":
		return Instagram, true
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		return TikTok, true
	}
	return "", false
}

// Fetcher downloads a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Response, error)
}

// Scraper reads Open Graph metadata from public video pages.
type Scraper struct {
	fetcher Fetcher
	logger  *infra.Logger
}

func NewScraper(f Fetcher, logger *infra.Logger) *Scraper {
	return &Scraper{fetcher: f, logger: infra.LoggerOrDiscard(logger)}
}

// ScrapeInstagramReel scrapes a public Instagram reel or post.
func (s *Scraper) ScrapeInstagramReel(ctx context.Context, rawURL string) domain.Result[domain.VideoPost] {
	return s.scrape(ctx, Instagram, rawURL)
}

// ScrapeTikTok scrapes a public TikTok video.
func (s *Scraper) ScrapeTikTok(ctx context.Context, rawURL string) domain.Result[domain.VideoPost] {
	return s.scrape(ctx, TikTok, rawURL)
}

func (s *Scraper) scrape(ctx context.Context, platform Platform, rawURL string) domain.Result[domain.VideoPost] {
	resp, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.logger.Warn().Err(err).Str("platform", string(platform)).Str("url", rawURL).Msg("social: fetch failed")
		return domain.Fail[domain.VideoPost]("pagina kon niet worden opgehaald")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return domain.Fail[domain.VideoPost]("pagina kon niet worden gelezen")
	}

	post := domain.VideoPost{
		Caption:      meta(doc, "og:description", "description", "twitter:description"),
		ThumbnailURL: meta(doc, "og:image", "og:image:secure_url", "twitter:image"),
		VideoURL:     meta(doc, "og:video:secure_url", "og:video", "og:video:url", "twitter:player:stream"),
		Author:       meta(doc, "author", "twitter:creator", "og:title"),
		CanonicalURL: meta(doc, "og:url"),
	}
	if post.CanonicalURL == "" {
		post.CanonicalURL = strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	}
	if post.CanonicalURL == "" {
		post.CanonicalURL = rawURL
	}
	if platform == Instagram {
		post.Caption = instagramCaption(post.Caption)
	}

	if post.Caption == "" && post.ThumbnailURL == "" {
		s.logger.Warn().Str("platform", string(platform)).Str("url", rawURL).Msg("social: no metadata on page")
		return domain.Fail[domain.VideoPost]("geen videogegevens gevonden")
	}
	return domain.Ok(post)
}

// meta returns the first non-empty meta content among names, matching both
// property and name attributes.
func meta(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		for _, attr := range []string{"property", "name"} {
			sel := doc.Find(`meta[` + attr + `="` + name + `"]`).First()
			if v := strings.TrimSpace(sel.AttrOr("content", "")); v != "" {
				return v
			}
		}
	}
	return ""
}

// instagramCaption strips the engagement prefix Instagram puts in front of
// captions: `12 likes, 3 comments - chef on May 1, 2025: "caption".`
func instagramCaption(raw string) string {
	idx := strings.Index(raw, `: "`)
	if idx < 0 || !strings.Contains(raw[:idx], " - ") {
		return strings.TrimSpace(raw)
	}
	caption := strings.TrimSpace(raw[idx+3:])
	caption = strings.TrimSuffix(caption, ".")
	caption = strings.TrimSuffix(caption, `"`)
	return strings.TrimSpace(caption)
}
