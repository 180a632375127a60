package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezero/bookmark-bar-switcher/internal/snapshot"
	"github.com/trezero/bookmark-bar-switcher/internal/state"
)

func sampleBackup(ts int64) BookmarkBackup {
	return BookmarkBackup{
		Version:          FormatVersion,
		Timestamp:        ts,
		ExtensionVersion: "1.2.0",
		ActiveBarID:      "h",
		Bars: []BarSnapshot{
			{ID: "1", Title: PrimaryBarTitle, Bookmarks: snapshot.List{
				snapshot.Link{Title: "X", URL: "http://x"},
			}},
			{ID: "w", Title: "Work", Bookmarks: snapshot.List{
				snapshot.Folder{Title: "docs", Children: snapshot.List{
					snapshot.Link{Title: "go", URL: "https://go.dev"},
				}},
				snapshot.Folder{Title: "empty", Children: snapshot.List{}},
			}},
			{ID: "h", Title: "Home", Bookmarks: snapshot.List{}},
		},
	}
}

func TestStore_EmptyState(t *testing.T) {
	ctx := context.Background()
	s := NewStore(state.NewMemoryStore())

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrNoBackupsFound)

	history, err := s.History(ctx)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	_, err = s.At(ctx, 0)
	assert.ErrorIs(t, err, ErrNoBackupsFound)
}

func TestStore_SaveBoundsHistory(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		saves    int
	}{
		{"default capacity", 0, 8},
		{"under capacity", 5, 3},
		{"exactly capacity", 3, 3},
		{"capacity one", 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(state.NewMemoryStore(), WithCapacity(tt.capacity))
			capacity := s.Capacity()

			for i := 1; i <= tt.saves; i++ {
				require.NoError(t, s.Save(ctx, sampleBackup(int64(i))))
			}

			history, err := s.History(ctx)
			require.NoError(t, err)
			want := min(tt.saves, capacity)
			require.Len(t, history, want)
			for i, b := range history {
				assert.Equal(t, int64(tt.saves-i), b.Timestamp, "history[%d]", i)
			}

			latest, err := s.Latest(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(tt.saves), latest.Timestamp)
		})
	}
}

func TestStore_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewStore(state.NewMemoryStore()).Capacity())
	assert.Equal(t, DefaultCapacity, NewStore(state.NewMemoryStore(), WithCapacity(-2)).Capacity())
}

func TestStore_SavedBackupRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := NewStore(state.NewMemoryStore())
	b := sampleBackup(1700000000000)

	require.NoError(t, s.Save(ctx, b))

	got, err := s.At(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = s.At(ctx, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestBookmarkBackup_JSONKeys(t *testing.T) {
	data, err := json.Marshal(sampleBackup(42))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"version", "timestamp", "extensionVersion", "activeBarId", "bars"} {
		assert.Contains(t, raw, key)
	}
}

func TestBookmarkBackup_Validate(t *testing.T) {
	assert.NoError(t, sampleBackup(1).Validate())

	noPrimary := sampleBackup(1)
	noPrimary.Bars = noPrimary.Bars[1:]
	assert.ErrorIs(t, noPrimary.Validate(), ErrInvalidBackup)

	twoPrimaries := sampleBackup(1)
	twoPrimaries.Bars[1].Title = PrimaryBarTitle
	assert.ErrorIs(t, twoPrimaries.Validate(), ErrInvalidBackup)

	badLink := sampleBackup(1)
	badLink.Bars[2].Bookmarks = snapshot.List{snapshot.Link{Title: "no url"}}
	assert.ErrorIs(t, badLink.Validate(), snapshot.ErrCodec)
}

func TestBookmarkBackup_Helpers(t *testing.T) {
	b := sampleBackup(1700000000123)

	primary, ok := b.Primary()
	require.True(t, ok)
	assert.Equal(t, "1", primary.ID)

	bars, links, folders := b.Stats()
	assert.Equal(t, 3, bars)
	assert.Equal(t, 2, links)
	assert.Equal(t, 2, folders)

	assert.Equal(t, int64(1700000000123), b.Time().UnixMilli())
}

func TestExportImport(t *testing.T) {
	want := sampleBackup(1760000000000)

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Export(&buf, want, format))
			assert.NotContains(t, buf.String(), "e+12", "timestamp must stay integral")

			got, err := Import(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestImport_Invalid(t *testing.T) {
	_, err := Import(strings.NewReader(`{"version":1,"bars":[]}`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidBackup)

	_, err = Import(strings.NewReader(`{"bars":[{"title":"`+PrimaryBarTitle+`","bookmarks":[{"url":"http://x"}]}]}`), FormatJSON)
	assert.ErrorIs(t, err, snapshot.ErrCodec)

	_, err = Import(strings.NewReader(`{}`), Format("xml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.ErrorIs(t, Export(&bytes.Buffer{}, sampleBackup(1), Format("xml")), ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"YML", FormatYAML, false},
		{".yaml", FormatYAML, false},
		{"toml", FormatTOML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, FormatTOML, FormatFromPath("/tmp/b.toml"))
	assert.Equal(t, FormatJSON, FormatFromPath("/tmp/b.bak"))
}
