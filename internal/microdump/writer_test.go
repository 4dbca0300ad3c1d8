package microdump

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mrzor/microdump/internal/moduleid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPid = 12345
	testTid = 12346

	fooLine = "M 0000000000001000 000000000000002a 0000000000001000 33221100554477668899aabbccddeeff0 libfoo.so"
)

var testGUID = moduleid.ID{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF,
}

func fooMappings() MappingList {
	return MappingList{NewMappingEntry("libfoo.so", 0x1000, 0x1000, 42, testGUID)}
}

// moduleLines returns the M lines of a rendered report.
func moduleLines(report string) []string {
	var lines []string
	for _, line := range strings.Split(report, "\n") {
		if strings.HasPrefix(line, "M ") {
			lines = append(lines, line)
		}
	}
	return lines
}

func render(t *testing.T, w *Writer, ctx *CrashContext, mappings MappingList) string {
	t.Helper()
	out, ok := w.Render(testPid, ctx, ContextSize, mappings)
	require.True(t, ok, "Render() failed")
	return string(out)
}

func TestRender_ExactOutput(t *testing.T) {
	w := NewWriter(-1, Options{})
	ctx := &CrashContext{Tid: testTid}

	got := render(t, w, ctx, fooMappings())

	want := "-----BEGIN BREAKPAD MICRODUMP-----\n" +
		"O L " + archName + "\n" +
		"T 00003039 0000303a\n" +
		fooLine + "\n" +
		"-----END BREAKPAD MICRODUMP-----\n"
	assert.Equal(t, want, got)
}

func TestRender_Markers(t *testing.T) {
	w := NewWriter(-1, Options{})
	got := render(t, w, &CrashContext{Tid: testTid}, fooMappings())

	assert.Equal(t, 1, strings.Count(got, "-----BEGIN BREAKPAD MICRODUMP-----"))
	assert.Equal(t, 1, strings.Count(got, "-----END BREAKPAD MICRODUMP-----"))
	assert.True(t, strings.HasPrefix(got, beginMarker))
	assert.True(t, strings.HasSuffix(got, endMarker))
}

func TestRender_Deterministic(t *testing.T) {
	w := NewWriter(-1, Options{Product: "app", Version: "1.0"})
	ctx := &CrashContext{Tid: testTid, Siginfo: SignalInfo{Signo: 11, Code: 1, Addr: 0xdead}}

	first := render(t, w, ctx, fooMappings())
	second := render(t, w, ctx, fooMappings())

	assert.Equal(t, first, second)

	other := NewWriter(-1, Options{Product: "app", Version: "1.0"})
	assert.Equal(t, first, render(t, other, ctx, fooMappings()))
}

func TestRender_ModuleOrderAndDuplicates(t *testing.T) {
	mappings := MappingList{
		NewMappingEntry("libc.so.6", 0x7f0000000000, 0x1c000, 0, moduleid.ID{1}),
		NewMappingEntry("app", 0x400000, 0x2000, 0, moduleid.ID{2}),
		NewMappingEntry("libc.so.6", 0x7f0000000000, 0x1c000, 0, moduleid.ID{1}),
		NewMappingEntry("libm.so.6", 0x7f1000000000, 0x1000, 0x3000, moduleid.ID{3}),
	}

	got := moduleLines(render(t, NewWriter(-1, Options{}), &CrashContext{Tid: 1}, mappings))

	require.Len(t, got, len(mappings))
	for i, line := range got {
		name := string(mappings[i].Info.NameBytes())
		assert.True(t, strings.HasSuffix(line, " "+name), "line %d = %q, want module %s", i, line, name)
	}
	assert.Equal(t, got[0], got[2], "duplicate mappings are emitted as separate identical lines")
}

func TestRender_EmptyMappingList(t *testing.T) {
	for _, mappings := range []MappingList{nil, {}} {
		got := render(t, NewWriter(-1, Options{}), &CrashContext{Tid: testTid}, mappings)

		assert.Empty(t, moduleLines(got))
		assert.True(t, strings.HasPrefix(got, beginMarker))
		assert.True(t, strings.HasSuffix(got, endMarker))
	}
}

func TestRender_FieldWidths(t *testing.T) {
	mappings := MappingList{
		NewMappingEntry("zero", 0, 1, 0, moduleid.ID{}),
		NewMappingEntry("max", ^uint64(0), ^uint64(0), ^uint64(0), moduleid.ID{0xff, 0xff, 0xff, 0xff}),
		NewMappingEntry("small", 0x1, 0x2, 0x3, moduleid.ID{0, 0, 0, 1}),
	}

	got := moduleLines(render(t, NewWriter(-1, Options{}), &CrashContext{Tid: 1}, mappings))
	require.Len(t, got, 3)

	for _, line := range got {
		fields := strings.Fields(line)
		require.Len(t, fields, 6, "line %q", line)
		assert.Equal(t, "M", fields[0])
		for _, f := range fields[1:4] {
			assert.Len(t, f, 16)
			assert.Equal(t, strings.ToLower(f), f)
		}
		assert.Len(t, fields[4], moduleid.DebugIDLen)
	}
	assert.Equal(t, "M 0000000000000001 0000000000000003 0000000000000002 01"+strings.Repeat("0", 31)+" small", got[2])
}

func TestRender_InvalidInput(t *testing.T) {
	w := NewWriter(-1, Options{})
	ctx := &CrashContext{Tid: testTid}

	tests := []struct {
		name     string
		ctx      *CrashContext
		size     uintptr
		mappings MappingList
	}{
		{"nil context", nil, ContextSize, fooMappings()},
		{"short size", ctx, ContextSize - 1, fooMappings()},
		{"long size", ctx, ContextSize + 8, fooMappings()},
		{"zero size", ctx, 0, fooMappings()},
		{"too many modules", ctx, ContextSize, make(MappingList, MaxModules+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := w.Render(testPid, tt.ctx, tt.size, tt.mappings)
			assert.False(t, ok)
			assert.Nil(t, out)
		})
	}
}

func TestRender_LongNameTruncated(t *testing.T) {
	long := strings.Repeat("a", 4*MaxNameLen)
	mappings := MappingList{NewMappingEntry(long, 0x1000, 0x1000, 0, testGUID)}

	got := moduleLines(render(t, NewWriter(-1, Options{}), &CrashContext{Tid: 1}, mappings))

	require.Len(t, got, 1)
	fields := strings.Fields(got[0])
	assert.Equal(t, strings.Repeat("a", MaxNameLen-1), fields[5])
}

func TestRender_ControlBytesInName(t *testing.T) {
	mappings := MappingList{NewMappingEntry("evil\nM fake\x7f.so", 0x1000, 0x1000, 0, testGUID)}

	got := render(t, NewWriter(-1, Options{}), &CrashContext{Tid: 1}, mappings)

	lines := moduleLines(got)
	require.Len(t, lines, 1)
	assert.True(t, strings.HasSuffix(lines[0], " evil?M fake?.so"))
}

func TestRender_WorstCaseFits(t *testing.T) {
	mappings := make(MappingList, MaxModules)
	long := strings.Repeat("x", MaxNameLen)
	for i := range mappings {
		mappings[i] = NewMappingEntry(long, ^uint64(0), ^uint64(0), ^uint64(0), testGUID)
	}
	w := NewWriter(-1, Options{
		Product: strings.Repeat("p", MaxProductLen),
		Version: strings.Repeat("v", MaxProductLen),
	})
	ctx := &CrashContext{
		Tid:          -1,
		Siginfo:      SignalInfo{Signo: -1, Code: -1, Addr: ^uint64(0)},
		HasRegisters: true,
	}
	for i := range ctx.Regs {
		ctx.Regs[i] = ^uint64(0)
	}

	out, ok := w.Render(-1, ctx, ContextSize, mappings)
	require.True(t, ok)
	assert.LessOrEqual(t, len(out), MaxReportSize)
	assert.Len(t, moduleLines(string(out)), MaxModules)
}

func TestRender_SignalLine(t *testing.T) {
	ctx := &CrashContext{Tid: testTid, Siginfo: SignalInfo{Signo: 11, Code: 2, Addr: 0xdeadbeef}}

	got := render(t, NewWriter(-1, Options{}), ctx, nil)

	assert.Contains(t, got, "\nR 0000000b 00000002 00000000deadbeef\n")
}

func TestRender_NoSignalLineWithoutSignal(t *testing.T) {
	got := render(t, NewWriter(-1, Options{}), &CrashContext{Tid: testTid}, nil)

	assert.NotContains(t, got, "\nR ")
	assert.NotContains(t, got, "\nC")
}

func TestRender_RegisterLine(t *testing.T) {
	if NumRegisters == 0 {
		t.Skip("no register layout on this architecture")
	}
	ctx := &CrashContext{Tid: testTid, HasRegisters: true}
	for i := range ctx.Regs {
		ctx.Regs[i] = uint64(i)
	}

	got := render(t, NewWriter(-1, Options{}), ctx, nil)

	var want strings.Builder
	want.WriteString("\nC")
	for i := 0; i < NumRegisters; i++ {
		fmt.Fprintf(&want, " %016x", i)
	}
	want.WriteString("\n")
	assert.Contains(t, got, want.String())
}

func TestRender_RegistersOmittedWhenNotCaptured(t *testing.T) {
	ctx := &CrashContext{Tid: testTid, HasRegisters: false}
	ctx.Regs = Registers{}

	got := render(t, NewWriter(-1, Options{}), ctx, nil)

	assert.NotContains(t, got, "\nC")
}

func TestRender_ProductLine(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"product and version", Options{Product: "browser", Version: "42.0.1"}, "\nV browser:42.0.1\n"},
		{"missing version", Options{Product: "browser"}, "\nV browser:unknown\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, NewWriter(-1, tt.opts), &CrashContext{Tid: testTid}, nil)
			assert.Contains(t, got, tt.want)
		})
	}

	got := render(t, NewWriter(-1, Options{Version: "1.0"}), &CrashContext{Tid: testTid}, nil)
	assert.NotContains(t, got, "\nV ")
}

func TestRender_HeaderOrder(t *testing.T) {
	ctx := &CrashContext{Tid: testTid, Siginfo: SignalInfo{Signo: 6}, HasRegisters: true}
	got := render(t, NewWriter(-1, Options{Product: "p"}), ctx, fooMappings())

	var kinds []string
	for _, line := range strings.Split(strings.TrimSuffix(got, "\n"), "\n") {
		kinds = append(kinds, line[:1])
	}

	want := []string{"-", "V", "O", "T", "R"}
	if NumRegisters > 0 {
		want = append(want, "C")
	}
	want = append(want, "M", "-")
	assert.Equal(t, want, kinds)
}

func TestCrashContext_Accessors(t *testing.T) {
	ctx := &CrashContext{Tid: 7}

	assert.Equal(t, int32(7), ctx.ThreadID())
	_, ok := ctx.Signal()
	assert.False(t, ok)
	_, ok = ctx.RegisterSnapshot()
	assert.False(t, ok)

	ctx.Siginfo.Signo = 11
	si, ok := ctx.Signal()
	assert.True(t, ok)
	assert.Equal(t, int32(11), si.Signo)

	ctx.HasRegisters = true
	regs, ok := ctx.RegisterSnapshot()
	assert.Equal(t, NumRegisters > 0, ok)
	if ok {
		assert.Same(t, &ctx.Regs, regs)
	}
}

func TestMappingInfo_Name(t *testing.T) {
	var info MappingInfo
	info.SetName("libfoo.so")
	assert.Equal(t, "libfoo.so", string(info.NameBytes()))

	info.SetName(strings.Repeat("n", 2*MaxNameLen))
	assert.Len(t, info.NameBytes(), MaxNameLen-1)
	assert.Equal(t, byte(0), info.Name[MaxNameLen-1])
}
