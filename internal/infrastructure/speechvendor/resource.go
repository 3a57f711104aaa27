package speechvendor

import (
	"regexp"
	"strings"
)

// Vendor routing identifiers ("resource ids") selecting which backend model
// serves a synthesis request. The speaker-name prefix picks the primary
// guess; the rest are known alternates tried only on a recognized mismatch.
const (
	resourceSeedTTS        = "volc.service_type.10029"
	resourceMegaTTSDefault = "volc.megatts.default"
	resourceMegaTTSConcurr = "volc.megatts.concurr"
)

// Numeric vendor code reported when the resource id does not match the
// speaker's backend.
const resourceMismatchCode = 55000001

// The vendor reports routing and permission problems only through message
// text, so detection is string matching. Brittle and versioned to the vendor
// API; when the vendor changes wording, this file is the only place to touch.
var (
	resourceMismatchPattern = regexp.MustCompile(`(?i)resource.{0,4}id.{0,40}(mismatch|not match|doesn'?t match)`)
	speedRejectedPattern    = regexp.MustCompile(`(?i)(unknown|invalid|unsupported|unrecognized).{0,20}(speed_ratio|speech_rate|speed)|(speed_ratio|speech_rate).{0,20}(unknown|invalid|unsupported|unrecognized)`)
	notGrantedPattern       = regexp.MustCompile(`(?i)requested resource not granted`)
)

func primaryResourceID(speaker string) string {
	switch {
	case strings.HasPrefix(speaker, "S_"):
		// Cloned voices live on the megatts backend.
		return resourceMegaTTSDefault
	case strings.HasPrefix(speaker, "ICL_"):
		return resourceMegaTTSConcurr
	default:
		return resourceSeedTTS
	}
}

// resourceCandidates returns the ordered, de-duplicated resource id list for
// the fallback ladder: primary mapped guess first, then the known alternates.
func resourceCandidates(speaker string) []string {
	ordered := []string{
		primaryResourceID(speaker),
		resourceSeedTTS,
		resourceMegaTTSDefault,
		resourceMegaTTSConcurr,
	}
	seen := make(map[string]bool, len(ordered))
	candidates := ordered[:0]
	for _, id := range ordered {
		if seen[id] {
			continue
		}
		seen[id] = true
		candidates = append(candidates, id)
	}
	return candidates
}

// isResourceMismatchSignature reports whether a vendor error code/message
// pair means "resource id is mismatched with the speaker".
func isResourceMismatchSignature(code int64, message string) bool {
	if code == resourceMismatchCode {
		return true
	}
	return resourceMismatchPattern.MatchString(message)
}

func isSpeedRejectedSignature(message string) bool {
	return speedRejectedPattern.MatchString(message)
}

// rewritePermissionMessage turns the vendor's raw permission-denied text into
// a user-facing hint naming the resource to enable. Other messages pass
// through untouched.
func rewritePermissionMessage(message, resourceHint string) string {
	if notGrantedPattern.MatchString(message) {
		return "the " + resourceHint + " resource is not enabled for this account; enable it in the vendor console and retry"
	}
	return message
}
