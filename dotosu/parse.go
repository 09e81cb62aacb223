package dotosu

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

var (
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
	formatPrefix = []byte("osu file format v")
)

// ---------- Public API ----------

// DecodeFile reads and parses a single .osu file.
func DecodeFile(path string) (*Beatmap, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Kind: ErrIOFailure, Cause: err}
	}
	return ParseNamed(path, src)
}

// Decode reads r to the end and parses it.
func Decode(r io.Reader) (*Beatmap, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Kind: ErrIOFailure, Cause: err}
	}
	return Parse(src)
}

// Parse builds a Beatmap from a complete .osu buffer. src is not modified
// and not retained.
func Parse(src []byte) (*Beatmap, error) {
	return ParseNamed("", src)
}

// ParseNamed is Parse with name used as the file identifier in errors.
func ParseNamed(name string, src []byte) (*Beatmap, error) {
	p := &parser{name: name, b: &Beatmap{}}
	if err := p.run(src); err != nil {
		return nil, err
	}
	if err := p.build(); err != nil {
		return nil, err
	}
	return p.b, nil
}

// ---------- line loop ----------

type rawTimingPoint struct {
	time, beatLength float64
	uninherited      bool

	meter, sampleSet, sampleIndex, volume, effects int

	line   int
	record []byte
}

type rawHitObject struct {
	x      int
	time   float64
	end    float64
	hold   bool
	line   int
	record []byte
}

type parser struct {
	name string
	b    *Beatmap

	sec     section
	line    int
	record  []byte
	sawHead bool

	columnsSet  bool
	velocitySet bool

	timing  []rawTimingPoint
	objects []rawHitObject

	tuple [8]float64
}

func (p *parser) fail(kind error, format string, a ...any) *ParseError {
	return &ParseError{
		File:   p.name,
		Line:   p.line,
		Record: string(p.record),
		Kind:   kind,
		Msg:    fmt.Sprintf(format, a...),
	}
}

func (p *parser) run(src []byte) error {
	src = bytes.TrimPrefix(src, utf8BOM)
	for i := 0; i < len(src); {
		end := skipTo(src, i, '\n')
		p.line++
		start := skipWhitespace(src[:end], i)
		ln := src[start:trimRight(src, start, end)]
		i = end + 1

		if len(ln) == 0 || bytes.HasPrefix(ln, []byte("//")) {
			continue
		}
		p.record = ln

		if !p.sawHead {
			p.sawHead = true
			if bytes.HasPrefix(ln, formatPrefix) {
				v, _ := strconv.Atoi(string(ln[len(formatPrefix):]))
				p.b.FormatVersion = v
				continue
			}
		}

		if ln[0] == '[' {
			p.sec = classifySection(ln[1:skipTo(ln, 1, ']')])
			continue
		}

		var err error
		switch p.sec {
		case secGeneral, secMetadata, secDifficulty:
			err = p.keyValue(ln)
		case secEvents:
			p.event(ln)
		case secTimingPoints:
			p.timingPoint(ln)
		case secHitObjects:
			p.hitObject(ln)
		}
		if err != nil {
			return err
		}
	}
	p.record = nil
	p.line = 0
	return nil
}
