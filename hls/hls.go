// Package hls resolves the quality variants a channel's HLS master playlist offers.
//
// The platform publishes one master playlist per channel
// (<media-base>/hls/<channel>/index.m3u8) whose #EXT-X-STREAM-INF entries point at
// per-quality sub-playlists (1080p/index.m3u8, 720p/index.m3u8, 480p/index.m3u8,
// audio/index.m3u8). Only the tags this client needs are parsed; everything else is
// passed through untouched to the player.
package hls

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/streamer459/streamingdev-sub000/constant"
	"github.com/streamer459/streamingdev-sub000/network"
	"github.com/streamer459/streamingdev-sub000/util"
)

// Auto is the pseudo-quality that hands the master playlist to the player and lets it
// switch renditions adaptively.
const Auto = "auto"

// Variant is one rendition advertised by a master playlist.
type Variant struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Bandwidth  int    `json:"bandwidth"`
	Resolution string `json:"resolution,omitempty"`
}

// MasterURL builds the canonical master playlist location for a channel.
func MasterURL(mediaBase, channel string) string {
	return fmt.Sprintf("%s/hls/%s/index.m3u8", strings.TrimSuffix(mediaBase, "/"), url.PathEscape(channel))
}

// Resolver fetches and parses master playlists.
type Resolver struct {
	http *http.Client
}

// NewResolver returns a resolver using the shared HTTP client.
func NewResolver() *Resolver {
	return &Resolver{http: network.Client}
}

// NewResolverWith returns a resolver using an explicit HTTP client.
func NewResolverWith(httpClient *http.Client) *Resolver {
	return &Resolver{http: httpClient}
}

// Resolve fetches the master playlist and returns the variants it advertises,
// ordered as listed. Sub-playlist URIs are resolved against the master URL.
func (r *Resolver) Resolve(ctx context.Context, masterURL string) ([]Variant, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", masterURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create playlist request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch master playlist: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch master playlist: unexpected status %d", resp.StatusCode)
	}

	base, err := url.Parse(masterURL)
	if err != nil {
		return nil, fmt.Errorf("parse master playlist url: %w", err)
	}

	return parseMaster(bufio.NewScanner(resp.Body), base)
}

// parseMaster walks the playlist line by line. A #EXT-X-STREAM-INF tag applies to the
// next URI line, per the HLS specification.
func parseMaster(scanner *bufio.Scanner, base *url.URL) ([]Variant, error) {
	var (
		variants []Variant
		pending  map[string]string
		first    = true
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if first {
			if line != "#EXTM3U" {
				return nil, fmt.Errorf("not an m3u8 playlist: leading line %q", line)
			}
			first = false
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			pending = parseAttributes(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
		case strings.HasPrefix(line, "#"):
			continue
		default:
			if pending == nil {
				continue
			}
			variant, err := buildVariant(pending, line, base)
			if err != nil {
				return nil, err
			}
			variants = append(variants, variant)
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read master playlist: %w", err)
	}
	if first {
		return nil, fmt.Errorf("empty master playlist")
	}

	return variants, nil
}

func buildVariant(attrs map[string]string, uri string, base *url.URL) (Variant, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return Variant{}, fmt.Errorf("malformed variant uri %q: %w", uri, err)
	}

	variant := Variant{
		URL:        base.ResolveReference(ref).String(),
		Resolution: attrs["RESOLUTION"],
	}
	if bandwidth, err := strconv.Atoi(attrs["BANDWIDTH"]); err == nil {
		variant.Bandwidth = bandwidth
	}
	variant.Name = variantName(attrs, uri)
	return variant, nil
}

// variantName prefers the explicit NAME attribute, then the sub-playlist directory
// ("720p/index.m3u8"), then the vertical resolution.
func variantName(attrs map[string]string, uri string) string {
	if name := attrs["NAME"]; name != "" {
		return name
	}

	trimmed := strings.TrimPrefix(uri, "./")
	if idx := strings.IndexByte(trimmed, '/'); idx > 0 {
		return trimmed[:idx]
	}

	if res := attrs["RESOLUTION"]; res != "" {
		if idx := strings.IndexByte(res, 'x'); idx > 0 {
			return res[idx+1:] + "p"
		}
	}
	return trimmed
}

// parseAttributes splits an m3u8 attribute list, honoring quoted values that may
// themselves contain commas.
func parseAttributes(list string) map[string]string {
	attrs := make(map[string]string)

	var (
		current  strings.Builder
		inQuotes bool
		parts    []string
	)
	for _, r := range list {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			parts = append(parts, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	parts = append(parts, current.String())

	for _, part := range parts {
		k, v, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		attrs[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"`)
	}
	return attrs
}

// Pick returns the variant matching the preferred quality name, if offered.
func Pick(variants []Variant, preferred string) (Variant, bool) {
	for _, variant := range variants {
		if strings.EqualFold(variant.Name, preferred) {
			return variant, true
		}
	}
	return Variant{}, false
}

// Best returns the highest-bandwidth variant.
func Best(variants []Variant) (Variant, bool) {
	if len(variants) == 0 {
		return Variant{}, false
	}

	best := variants[0]
	for _, variant := range variants[1:] {
		if variant.Bandwidth > best.Bandwidth {
			best = variant
		}
	}
	return best, true
}

// Names lists the variant names in playlist order, with Auto prepended, for
// presenting a quality menu.
func Names(variants []Variant) []string {
	names := make([]string, 0, len(variants)+1)
	names = append(names, Auto)
	for _, variant := range variants {
		names = append(names, variant.Name)
	}
	return names
}
