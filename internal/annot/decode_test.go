package annot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTable is deliberately out of packed-id order so remapping has to
// search rather than fall through positionally.
func testTable() []Entry {
	return []Entry{
		{Name: "unknown", R: 25, G: 5, B: 25},
		{Name: "bankssts", R: 25, G: 100, B: 40},
		{Name: "caudalanteriorcingulate", R: 125, G: 100, B: 160},
		{Name: "caudalmiddlefrontal", R: 100, G: 25, B: 0},
	}
}

func encodeFixture(t *testing.T, format Format, labels []int32, table []Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := Encode(&buf, &Annotation{
		OrigPath:   "/usr/local/freesurfer/FreeSurferColorLUT.txt",
		Labels:     labels,
		ColorTable: table,
	}, format)
	require.NoError(t, err)
	return buf.Bytes()
}

func packedLabels(format Format, table []Entry, positions ...int) []int32 {
	out := make([]int32, len(positions))
	for i, p := range positions {
		out[i] = int32(PackedID(table[p], format))
	}
	return out
}

func TestDecodeLegacyRoundTripKeepsOriginalIDs(t *testing.T) {
	table := testTable()
	labels := packedLabels(FormatLegacy, table, 1, 1, 3, 0, 2)
	data := encodeFixture(t, FormatLegacy, labels, table)

	ann, err := Decode(data, DecodeOptions{KeepOriginalIDs: true})
	require.NoError(t, err)

	assert.Equal(t, FormatLegacy, ann.Format)
	assert.Equal(t, "/usr/local/freesurfer/FreeSurferColorLUT.txt", ann.OrigPath)
	assert.Equal(t, labels, ann.Labels)
	assert.Equal(t, []string{"unknown", "bankssts", "caudalanteriorcingulate", "caudalmiddlefrontal"}, ann.Names)
	require.Len(t, ann.ColorTable, len(table))
	for i, entry := range ann.ColorTable {
		assert.Equal(t, table[i].Name, entry.Name)
		assert.Equal(t, table[i].R, entry.R)
		assert.Equal(t, table[i].G, entry.G)
		assert.Equal(t, table[i].B, entry.B)
		assert.Equal(t, int32(255), entry.A, "alpha is normalized")
		assert.Equal(t, PackedID(table[i], FormatLegacy), entry.PackedID)
	}
}

func TestDecodeLegacyPackedIDIncludesAlpha(t *testing.T) {
	table := []Entry{{Name: "a", R: 1, G: 2, B: 3, A: 4}}
	data := encodeFixture(t, FormatLegacy, packedLabels(FormatLegacy, table, 0), table)

	ann, err := Decode(data, DecodeOptions{KeepOriginalIDs: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1+2<<8+3<<16+4<<24), ann.ColorTable[0].PackedID)
	assert.Equal(t, int32(255), ann.ColorTable[0].A)
}

func TestDecodeRemapsToColorTablePositions(t *testing.T) {
	table := testTable()
	data := encodeFixture(t, FormatLegacy, packedLabels(FormatLegacy, table, 1, 1, 3, 0, 2), table)

	ann, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1, 3, 0, 2}, ann.Labels)

	entry, ok := ann.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "caudalmiddlefrontal", entry.Name)
	_, ok = ann.Lookup(4)
	assert.False(t, ok)
	_, ok = ann.Lookup(-1)
	assert.False(t, ok)
}

func TestDecodeLegacyRemapsHighAlphaEntries(t *testing.T) {
	table := testTable()
	table[1].A = 200
	table[3].A = 255
	labels := packedLabels(FormatLegacy, table, 1, 3, 0)
	require.Negative(t, labels[0], "packed id above 2^31 is stored as a negative int32")

	data := encodeFixture(t, FormatLegacy, labels, table)
	ann, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 3, 0}, ann.Labels)
	assert.Equal(t, int64(25+100<<8+40<<16+200<<24), ann.ColorTable[1].PackedID)

	kept, err := Decode(data, DecodeOptions{KeepOriginalIDs: true})
	require.NoError(t, err)
	assert.Equal(t, labels, kept.Labels)
}

func TestDecodeV2(t *testing.T) {
	table := testTable()
	// Alpha is ignored by the v2 packed id.
	table[2].A = 9
	labels := packedLabels(FormatV2, table, 2, 0, 3)
	data := encodeFixture(t, FormatV2, labels, table)

	ann, err := Decode(data, DecodeOptions{KeepOriginalIDs: true})
	require.NoError(t, err)
	assert.Equal(t, FormatV2, ann.Format)
	assert.Equal(t, labels, ann.Labels)
	assert.Equal(t, int64(125+100<<8+160<<16), ann.ColorTable[2].PackedID)
	assert.Equal(t, int32(255), ann.ColorTable[2].A)
	assert.Len(t, ann.Names, 4)

	remapped, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 0, 3}, remapped.Labels)
}

func TestDecodeV2KeepsDeclaredTableSize(t *testing.T) {
	table := testTable()[:2]
	var buf bytes.Buffer
	put := func(v int32) {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, v))
	}
	putStr := func(s string) {
		put(int32(len(s) + 1))
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	put(1)
	put(0)
	put(int32(PackedID(table[1], FormatV2)))
	put(1)
	put(-2)
	put(5) // declared size
	putStr("lut")
	put(2) // serialized entries
	for i, e := range table {
		put(int32(i + 10))
		putStr(e.Name)
		put(e.R)
		put(e.G)
		put(e.B)
		put(e.A)
	}

	ann, err := Decode(buf.Bytes(), DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, ann.ColorTable, 5)
	assert.Len(t, ann.Names, 2)
	assert.Equal(t, "lut", ann.OrigPath)
	assert.Equal(t, []int32{1}, ann.Labels)
	assert.Equal(t, int32(255), ann.ColorTable[4].A)
	assert.Equal(t, int64(0), ann.ColorTable[4].PackedID)
}

func TestDecodeRejectsUnsupportedVersions(t *testing.T) {
	valid := encodeFixture(t, FormatV2, packedLabels(FormatV2, testTable(), 0), testTable())
	// vertex count + one record + flag precede the version marker.
	markerOffset := 4 + 8 + 4

	for _, version := range []int32{1, 3, 7} {
		data := bytes.Clone(valid)
		binary.BigEndian.PutUint32(data[markerOffset:], uint32(-version))

		_, err := Decode(data, DecodeOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedTableVersion)

		var verr *UnsupportedVersionError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, version, verr.Version)
		assert.Equal(t, markerOffset, verr.Offset)
	}

	data := bytes.Clone(valid)
	binary.BigEndian.PutUint32(data[markerOffset:], 0)
	_, err := Decode(data, DecodeOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedTableVersion, "zero entries reads as version 0")
}

func TestDecodeMissingColorTable(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int32{2, 0, 5, 1, 5, 0} {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, v))
	}
	_, err := Decode(buf.Bytes(), DecodeOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColorTable)
}

func TestDecodeTruncatedAtEveryOffset(t *testing.T) {
	for _, format := range []Format{FormatLegacy, FormatV2} {
		table := testTable()
		data := encodeFixture(t, format, packedLabels(format, table, 0, 1, 2), table)
		for n := 0; n < len(data); n++ {
			ann, err := Decode(data[:n], DecodeOptions{})
			require.Errorf(t, err, "%s prefix of %d bytes decoded", format, n)
			assert.Nil(t, ann)
			assert.Truef(t, errors.Is(err, ErrTruncated), "%s prefix %d: %v", format, n, err)

			var ferr *FormatError
			require.ErrorAs(t, err, &ferr)
			assert.LessOrEqual(t, ferr.Offset, n)
		}
	}
}

func TestDecodeVertexIndexMismatch(t *testing.T) {
	table := testTable()
	data := encodeFixture(t, FormatLegacy, packedLabels(FormatLegacy, table, 0, 1, 2), table)
	// Second record's vertex id.
	binary.BigEndian.PutUint32(data[4+8:], 7)

	_, err := Decode(data, DecodeOptions{})
	require.ErrorIs(t, err, ErrVertexIndex)
	var verr *VertexIndexError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Position)
	assert.Equal(t, int32(7), verr.Found)
	assert.Equal(t, 12, verr.Offset)
}

func TestDecodeNegativeVertexCount(t *testing.T) {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(0xFFFFFFFF))
	_, err := Decode(data, DecodeOptions{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeUnmatchedLabel(t *testing.T) {
	table := testTable()
	labels := append(packedLabels(FormatLegacy, table, 0, 1), 424242)
	data := encodeFixture(t, FormatLegacy, labels, table)

	_, err := Decode(data, DecodeOptions{})
	require.ErrorIs(t, err, ErrLabelNotFound)
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 2, lerr.Vertex)
	assert.Equal(t, int32(424242), lerr.Value)

	ann, err := Decode(data, DecodeOptions{Unmatched: UnmatchedSentinel})
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, Unlabeled}, ann.Labels)

	kept, err := Decode(data, DecodeOptions{KeepOriginalIDs: true})
	require.NoError(t, err, "unmatched values only matter when remapping")
	assert.Equal(t, labels, kept.Labels)
}

func TestDecodeDuplicatePackedIDsResolveToFirstPosition(t *testing.T) {
	table := []Entry{
		{Name: "first", R: 10, G: 20, B: 30},
		{Name: "other", R: 1, G: 1, B: 1},
		{Name: "second", R: 10, G: 20, B: 30},
	}
	data := encodeFixture(t, FormatLegacy, packedLabels(FormatLegacy, table, 2, 1), table)

	ann, err := Decode(data, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1}, ann.Labels)
}

func TestDecodeReader(t *testing.T) {
	table := testTable()
	data := encodeFixture(t, FormatLegacy, packedLabels(FormatLegacy, table, 3), table)

	ann, err := DecodeReader(bytes.NewReader(data), DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, ann.VertexCount())
	assert.Equal(t, []int32{3}, ann.Labels)
}

func TestParseUnmatchedPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    UnmatchedPolicy
		wantErr bool
	}{
		{"", UnmatchedFail, false},
		{"fail", UnmatchedFail, false},
		{"sentinel", UnmatchedSentinel, false},
		{"drop", UnmatchedFail, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnmatchedPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
