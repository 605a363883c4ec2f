package extract

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClosers  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
)

const maxLinkBodyBytes = int64(5 << 20)

// extractLink fetches the page and strips it down to readable text. The
// page title becomes the document display name, falling back to the host.
func (s *Service) extractLink(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid url %q", ErrFetchFailed, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d from %s", ErrFetchFailed, resp.StatusCode, parsed.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLinkBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}

	page := string(body)
	title := pageTitle(page, parsed)
	text := stripHTML(page)
	if len(text) < minLinkTextLen {
		return nil, fmt.Errorf("%w: page has too little readable text", ErrUnreadableContent)
	}

	return &Result{Text: text, Title: title}, nil
}

func pageTitle(page string, u *url.URL) string {
	if matches := titleTag.FindStringSubmatch(page); len(matches) > 1 {
		title := strings.TrimSpace(html.UnescapeString(matches[1]))
		if title != "" {
			return title
		}
	}
	return u.Host
}

func stripHTML(page string) string {
	page = htmlComments.ReplaceAllString(page, "")
	page = scriptTag.ReplaceAllString(page, "")
	page = styleTag.ReplaceAllString(page, "")
	page = noscriptTag.ReplaceAllString(page, "")
	page = blockClosers.ReplaceAllString(page, "\n")
	page = brTags.ReplaceAllString(page, "\n")
	page = allTags.ReplaceAllString(page, " ")
	page = html.UnescapeString(page)
	return normalizeText(page)
}
