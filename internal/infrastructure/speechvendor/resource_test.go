package speechvendor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimaryResourceIDBySpeakerPrefix(t *testing.T) {
	assert.Equal(t, resourceMegaTTSDefault, primaryResourceID("S_abc123"))
	assert.Equal(t, resourceMegaTTSConcurr, primaryResourceID("ICL_xyz"))
	assert.Equal(t, resourceSeedTTS, primaryResourceID("zh_female_cancan"))
	assert.Equal(t, resourceSeedTTS, primaryResourceID(""))
}

func TestResourceCandidatesOrderedAndDeduplicated(t *testing.T) {
	assert.Equal(t,
		[]string{resourceSeedTTS, resourceMegaTTSDefault, resourceMegaTTSConcurr},
		resourceCandidates("zh_female_cancan"))
	assert.Equal(t,
		[]string{resourceMegaTTSDefault, resourceSeedTTS, resourceMegaTTSConcurr},
		resourceCandidates("S_abc123"))
	assert.Equal(t,
		[]string{resourceMegaTTSConcurr, resourceSeedTTS, resourceMegaTTSDefault},
		resourceCandidates("ICL_xyz"))
}

func TestResourceMismatchSignature(t *testing.T) {
	assert.True(t, isResourceMismatchSignature(resourceMismatchCode, ""))
	assert.True(t, isResourceMismatchSignature(0, "resource id mismatched with the speaker"))
	assert.True(t, isResourceMismatchSignature(0, "Resource ID does not match voice type"))
	assert.False(t, isResourceMismatchSignature(0, "internal server error"))
	assert.False(t, isResourceMismatchSignature(40000001, "invalid text"))
}

func TestSpeedRejectedSignature(t *testing.T) {
	assert.True(t, isSpeedRejectedSignature("invalid speed_ratio"))
	assert.True(t, isSpeedRejectedSignature("unknown parameter speech_rate"))
	assert.True(t, isSpeedRejectedSignature("speed_ratio is unsupported"))
	assert.False(t, isSpeedRejectedSignature("text too long"))
}

func TestRewritePermissionMessage(t *testing.T) {
	rewritten := rewritePermissionMessage("requested resource not granted", resourceSeedTTS)
	assert.Contains(t, rewritten, resourceSeedTTS)
	assert.Contains(t, rewritten, "enable it in the vendor console")

	assert.Equal(t, "some other failure",
		rewritePermissionMessage("some other failure", resourceSeedTTS))
}
