package dotosu

type section uint8

const (
	secNone section = iota
	secGeneral
	secEditor
	secMetadata
	secDifficulty
	secEvents
	secTimingPoints
	secHitObjects
	secUnknown
)

var sectionNames = [...]string{
	secNone:         "",
	secGeneral:      "General",
	secEditor:       "Editor",
	secMetadata:     "Metadata",
	secDifficulty:   "Difficulty",
	secEvents:       "Events",
	secTimingPoints: "TimingPoints",
	secHitObjects:   "HitObjects",
	secUnknown:      "?",
}

func (s section) String() string { return sectionNames[s] }

var sectionsByName = func() map[string]section {
	m := make(map[string]section, len(sectionNames))
	for s := secGeneral; s < secUnknown; s++ {
		m[sectionNames[s]] = s
	}
	return m
}()

// classifySection maps the text between '[' and ']' to a section.
func classifySection(name []byte) section {
	if s, ok := sectionsByName[string(name)]; ok {
		return s
	}
	return secUnknown
}

type key uint8

const (
	keyUnknown key = iota

	keyAudioFilename
	keyAudioLeadIn
	keyPreviewTime
	keyMode

	keyTitle
	keyTitleUnicode
	keyArtist
	keyArtistUnicode
	keyCreator
	keyVersion
	keySource
	keyTags
	keyBeatmapID
	keyBeatmapSetID

	keyHPDrainRate
	keyCircleSize
	keyOverallDifficulty
	keyApproachRate
	keySliderMultiplier
	keySliderTickRate

	keyCount
)

type keyInfo struct {
	name string
	sec  section
}

var keyInfos = [keyCount]keyInfo{
	keyUnknown: {"?", secNone},

	keyAudioFilename: {"AudioFilename", secGeneral},
	keyAudioLeadIn:   {"AudioLeadIn", secGeneral},
	keyPreviewTime:   {"PreviewTime", secGeneral},
	keyMode:          {"Mode", secGeneral},

	keyTitle:         {"Title", secMetadata},
	keyTitleUnicode:  {"TitleUnicode", secMetadata},
	keyArtist:        {"Artist", secMetadata},
	keyArtistUnicode: {"ArtistUnicode", secMetadata},
	keyCreator:       {"Creator", secMetadata},
	keyVersion:       {"Version", secMetadata},
	keySource:        {"Source", secMetadata},
	keyTags:          {"Tags", secMetadata},
	keyBeatmapID:     {"BeatmapID", secMetadata},
	keyBeatmapSetID:  {"BeatmapSetID", secMetadata},

	keyHPDrainRate:       {"HPDrainRate", secDifficulty},
	keyCircleSize:        {"CircleSize", secDifficulty},
	keyOverallDifficulty: {"OverallDifficulty", secDifficulty},
	keyApproachRate:      {"ApproachRate", secDifficulty},
	keySliderMultiplier:  {"SliderMultiplier", secDifficulty},
	keySliderTickRate:    {"SliderTickRate", secDifficulty},
}

func (k key) String() string { return keyInfos[k].name }

var keysByName = func() map[string]key {
	m := make(map[string]key, keyCount)
	for k := keyUnknown + 1; k < keyCount; k++ {
		m[keyInfos[k].name] = k
	}
	return m
}()

// classifyKey maps a key name to a key of sec. Names that belong to another
// section are unknown here.
func classifyKey(sec section, name []byte) key {
	k, ok := keysByName[string(name)]
	if !ok || keyInfos[k].sec != sec {
		return keyUnknown
	}
	return k
}
