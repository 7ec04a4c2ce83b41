// Package subtitles retrieves subtitle tracks into local scratch files.
package subtitles

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/famomatic/crunchdl/client"
)

// Fetch downloads a subtitle track to path. ASS payloads get their script
// info normalized so players render borders consistently.
func Fetch(ctx context.Context, httpClient *http.Client, track client.SubtitleTrack, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.URL, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subtitle fetch failed: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if strings.EqualFold(track.Format, "ass") {
		body = []byte(normalizeASS(string(body)))
	}
	return os.WriteFile(path, body, 0o644)
}

// normalizeASS forces ScaledBorderAndShadow on so subtitle borders scale
// with the output resolution instead of rendering at script size.
func normalizeASS(script string) string {
	const directive = "ScaledBorderAndShadow"

	lines := strings.Split(script, "\n")
	inScriptInfo := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "[Script Info]"):
			inScriptInfo = true
		case strings.HasPrefix(trimmed, "["):
			if inScriptInfo {
				// Section ended without the directive; insert it.
				return strings.Join(append(lines[:i:i], append([]string{directive + ": yes"}, lines[i:]...)...), "\n")
			}
			inScriptInfo = false
		case inScriptInfo && strings.HasPrefix(trimmed, directive):
			lines[i] = directive + ": yes"
			return strings.Join(lines, "\n")
		}
	}
	return script
}
