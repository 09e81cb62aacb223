package dotosu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanNumber(t *testing.T) {
	for _, tc := range []struct {
		in   string
		v    float64
		next int
		ok   bool
	}{
		{"0", 0, 1, true},
		{"  42,", 42, 4, true},
		{"-50", -50, 3, true},
		{"+1.5x", 1.5, 4, true},
		{"333.33", 333.33, 6, true},
		{".5", 0.5, 2, true},
		{"7.", 7, 2, true},
		{"1e3", 1000, 3, true},
		{"2E-1,", 0.2, 4, true},
		{"5e", 5, 1, true},
		{"", 0, 0, false},
		{"-", 0, 0, false},
		{".", 0, 0, false},
		{"abc", 0, 0, false},
		{"  x", 0, 2, false},
	} {
		v, next, ok := scanNumber([]byte(tc.in), 0)
		assert.Equal(t, tc.ok, ok, "%q", tc.in)
		assert.Equal(t, tc.next, next, "%q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.v, v, 1e-12, "%q", tc.in)
		}
	}
}

func TestScanDecimal(t *testing.T) {
	for in, end := range map[string]int{
		"4":     1,
		"4.5":   3,
		"4.5.1": 3,
		"10abc": 2,
		".":     0,
		"":      0,
		"-3":    0,
		".25":   3,
	} {
		assert.Equal(t, end, scanDecimal([]byte(in), 0), "%q", in)
	}
}

func TestScanTuple(t *testing.T) {
	out := make([]float64, 6)

	n := scanTuple([]byte("256,192,2500,128,0,3500:0:0:0:"), 0, out)
	assert.Equal(t, 6, n)
	assert.Equal(t, []float64{256, 192, 2500, 128, 0, 3500}, out)

	n = scanTuple([]byte("1 , 2 ,3"), 0, out)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{1, 2, 3}, out[:n])

	n = scanTuple([]byte("1,2,x,4"), 0, out)
	assert.Equal(t, 2, n)

	n = scanTuple([]byte("1;2"), 0, out)
	assert.Equal(t, 1, n)

	n = scanTuple([]byte("1,2,3,4,5,6,7,8"), 0, out)
	assert.Equal(t, len(out), n)

	assert.Zero(t, scanTuple([]byte("# comment"), 0, out))
}

func TestTrimHelpers(t *testing.T) {
	buf := []byte("  key : value \r")
	i := skipWhitespace(buf, 0)
	assert.Equal(t, 2, i)
	assert.Equal(t, 6, skipTo(buf, i, ':'))
	assert.Equal(t, len(buf), skipTo(buf, i, '#'))
	assert.Equal(t, "key : value", string(buf[i:trimRight(buf, i, len(buf))]))
	assert.Equal(t, 3, trimRight([]byte("   "), 3, 3))
}

func TestSplitKeyVal(t *testing.T) {
	for _, tc := range []struct{ in, name, val string }{
		{"CircleSize:4", "CircleSize", "4"},
		{"CircleSize : 4 ", "CircleSize", "4"},
		{"Title:a:b", "Title", "a:b"},
		{"Tags:", "Tags", ""},
		{"NoColon", "NoColon", ""},
	} {
		name, val := splitKeyVal([]byte(tc.in))
		assert.Equal(t, tc.name, string(name), tc.in)
		assert.Equal(t, tc.val, string(val), tc.in)
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"0", "0", `"bg, final.jpg"`, "0", "0"}, splitCSV(`0,0,"bg, final.jpg",0,0`))
	assert.Equal(t, []string{"2", "100", "200"}, splitCSV("2, 100 ,200"))
	assert.Equal(t, "bg, final.jpg", cleanFilename(`"bg, final.jpg"`))
	assert.Equal(t, "sb/bg.png", cleanFilename(` "sb\bg.png" `))
}
