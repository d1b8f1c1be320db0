package source

import "strings"

// MatchesAsset reports whether text mentions the asset's symbol or full
// name, case-insensitively. Used by batch-feed adapters that must filter
// provider output client-side.
func MatchesAsset(text string, asset Asset) bool {
	lowered := strings.ToLower(text)
	if symbol := strings.ToLower(strings.TrimSpace(asset.Symbol)); symbol != "" {
		if strings.Contains(lowered, symbol) {
			return true
		}
	}
	if name := strings.ToLower(strings.TrimSpace(asset.FullName)); name != "" {
		if strings.Contains(lowered, name) {
			return true
		}
	}
	return false
}
