// Package downloader retrieves HLS media payloads segment by segment into
// a local scratch file.
package downloader

import (
	"bufio"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HLSDownloader fetches every segment of a VOD media playlist in order.
type HLSDownloader struct {
	Client      *http.Client
	PlaylistURL string

	// OnSegment, when set, is called after each segment is written with
	// the 1-based segment index and the total segment count.
	OnSegment func(done, total int)
}

type hlsSegment struct {
	URL string
	Key *hlsKey
}

type hlsKey struct {
	Method string
	URI    string
	IV     []byte
	Key    []byte
}

// NewHLSDownloader returns a downloader for the given media playlist.
func NewHLSDownloader(client *http.Client, playlistURL string) *HLSDownloader {
	return &HLSDownloader{Client: client, PlaylistURL: playlistURL}
}

// Download writes the concatenated, decrypted segment payloads to w.
func (h *HLSDownloader) Download(ctx context.Context, w io.Writer) error {
	manifest, err := h.fetchText(ctx, h.PlaylistURL)
	if err != nil {
		return err
	}

	segments, err := h.parseSegments(ctx, manifest, h.PlaylistURL)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("playlist has no segments")
	}

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.downloadSegment(ctx, seg, w); err != nil {
			return fmt.Errorf("segment %d/%d: %w", i+1, len(segments), err)
		}
		if h.OnSegment != nil {
			h.OnSegment(i+1, len(segments))
		}
	}
	return nil
}

func (h *HLSDownloader) fetchText(ctx context.Context, rawURL string) (string, error) {
	body, err := h.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (h *HLSDownloader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: status=%d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (h *HLSDownloader) parseSegments(ctx context.Context, manifest, manifestURL string) ([]hlsSegment, error) {
	scanner := bufio.NewScanner(strings.NewReader(manifest))
	var segments []hlsSegment
	var currentKey *hlsKey

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#EXT-X-KEY:"):
			key, err := parseKey(line[len("#EXT-X-KEY:"):])
			if err != nil {
				return nil, err
			}
			if key.Method == "AES-128" && len(key.Key) == 0 {
				keyBytes, err := h.fetch(ctx, resolveURL(manifestURL, key.URI))
				if err != nil {
					return nil, fmt.Errorf("fetch segment key: %w", err)
				}
				key.Key = keyBytes
			}
			currentKey = key
		case strings.HasPrefix(line, "#EXTINF:"):
			if scanner.Scan() {
				urlLine := strings.TrimSpace(scanner.Text())
				segments = append(segments, hlsSegment{
					URL: resolveURL(manifestURL, urlLine),
					Key: currentKey,
				})
			}
		}
	}
	return segments, scanner.Err()
}

func (h *HLSDownloader) downloadSegment(ctx context.Context, seg hlsSegment, w io.Writer) error {
	body, err := h.fetch(ctx, seg.URL)
	if err != nil {
		return err
	}

	if seg.Key != nil && seg.Key.Method == "AES-128" {
		body, err = decryptAES128(body, seg.Key)
		if err != nil {
			return err
		}
	}

	_, err = w.Write(body)
	return err
}

func decryptAES128(data []byte, key *hlsKey) ([]byte, error) {
	if len(key.Key) == 0 {
		return nil, fmt.Errorf("missing key for encrypted segment")
	}
	block, err := aes.NewCipher(key.Key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return data, nil
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("encrypted data not block aligned")
	}

	iv := key.IV
	if len(iv) != aes.BlockSize {
		iv = make([]byte, aes.BlockSize)
	}
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(data, data)

	// PKCS7 padding
	padding := int(data[len(data)-1])
	if padding == 0 || padding > len(data) || padding > aes.BlockSize {
		return nil, fmt.Errorf("invalid padding")
	}
	return data[:len(data)-padding], nil
}

func parseKey(attrs string) (*hlsKey, error) {
	m := parseAttrs(attrs)
	key := &hlsKey{
		Method: m["METHOD"],
		URI:    m["URI"],
	}
	if ivHex, ok := m["IV"]; ok {
		iv, err := hex.DecodeString(strings.TrimPrefix(ivHex, "0x"))
		if err == nil {
			key.IV = iv
		}
	}
	return key, nil
}

// parseAttrs parses an m3u8 attribute list like `METHOD=AES-128,URI="k"`.
func parseAttrs(attrs string) map[string]string {
	out := make(map[string]string)
	for len(attrs) > 0 {
		eq := strings.IndexByte(attrs, '=')
		if eq < 0 {
			break
		}
		name := strings.TrimSpace(attrs[:eq])
		rest := attrs[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				break
			}
			value = rest[1 : end+1]
			rest = rest[end+2:]
		} else if comma := strings.IndexByte(rest, ','); comma >= 0 {
			value = rest[:comma]
			rest = rest[comma:]
		} else {
			value = rest
			rest = ""
		}
		out[name] = value
		attrs = strings.TrimPrefix(rest, ",")
	}
	return out
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
