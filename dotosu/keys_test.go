package dotosu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySection(t *testing.T) {
	assert.Equal(t, secGeneral, classifySection([]byte("General")))
	assert.Equal(t, secHitObjects, classifySection([]byte("HitObjects")))
	assert.Equal(t, secEditor, classifySection([]byte("Editor")))
	assert.Equal(t, secUnknown, classifySection([]byte("Colours")))
	assert.Equal(t, secUnknown, classifySection([]byte("general")))
	assert.Equal(t, secUnknown, classifySection(nil))
	assert.Equal(t, "TimingPoints", secTimingPoints.String())
}

func TestClassifyKey(t *testing.T) {
	for k := keyUnknown + 1; k < keyCount; k++ {
		info := keyInfos[k]
		assert.Equal(t, k, classifyKey(info.sec, []byte(info.name)), info.name)
		assert.Equal(t, keyUnknown, classifyKey(secEvents, []byte(info.name)), info.name)
	}

	assert.Equal(t, keyCircleSize, classifyKey(secDifficulty, []byte("CircleSize")))
	assert.Equal(t, keyUnknown, classifyKey(secGeneral, []byte("CircleSize")))
	assert.Equal(t, keyUnknown, classifyKey(secDifficulty, []byte("circlesize")))
	assert.Equal(t, keyUnknown, classifyKey(secDifficulty, []byte("CircleSize ")))
	assert.Equal(t, keyUnknown, classifyKey(secEditor, []byte("DistanceSpacing")))
	assert.Equal(t, "SliderMultiplier", keySliderMultiplier.String())
}
