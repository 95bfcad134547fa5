package entities

import (
	"strings"
	"testing"
	"unicode/utf8"

	"questnote/domain/config"
	pkgerrors "questnote/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_Success(t *testing.T) {
	conn, err := NewConnection("u1", "n1", "n2", "  relates to  ", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, conn.ID)
	assert.Equal(t, "u1", conn.OwnerID)
	assert.Equal(t, "n1", conn.SourceID)
	assert.Equal(t, "n2", conn.TargetID)
	assert.Equal(t, "relates to", conn.Label)
	assert.False(t, conn.CreatedAt.IsZero())
}

func TestNewConnection_SelfLoop(t *testing.T) {
	_, err := NewConnection("u1", "n1", "n1", "", nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "cannot connect a note to itself")
}

func TestNewConnection_MissingFields(t *testing.T) {
	_, err := NewConnection("", "n1", "n2", "", nil)
	assert.Error(t, err)

	_, err = NewConnection("u1", "", "n2", "", nil)
	assert.Error(t, err)

	_, err = NewConnection("u1", "n1", "", "", nil)
	assert.Error(t, err)
}

func TestNewConnection_LabelTruncated(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	long := strings.Repeat("x", cfg.MaxLabelLength+50)

	conn, err := NewConnection("u1", "n1", "n2", long, cfg)
	require.NoError(t, err)
	assert.Len(t, conn.Label, cfg.MaxLabelLength)
}

func TestNewConnection_LabelTruncatedOnRuneBoundary(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	// Two bytes per rune, so a byte-indexed cut would split a character.
	long := strings.Repeat("é", cfg.MaxLabelLength+1)

	conn, err := NewConnection("u1", "n1", "n2", long, cfg)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(conn.Label))
	assert.Equal(t, cfg.MaxLabelLength, utf8.RuneCountInString(conn.Label))
	assert.Equal(t, strings.Repeat("é", cfg.MaxLabelLength), conn.Label)
}

func TestConnection_Valid(t *testing.T) {
	valid := &Connection{ID: "c1", OwnerID: "u1", SourceID: "n1", TargetID: "n2"}
	assert.True(t, valid.Valid())

	assert.False(t, (&Connection{OwnerID: "u1", SourceID: "n1", TargetID: "n2"}).Valid())
	assert.False(t, (&Connection{ID: "c1", SourceID: "n1", TargetID: "n2"}).Valid())
	assert.False(t, (&Connection{ID: "c1", OwnerID: "u1", TargetID: "n2"}).Valid())
	assert.False(t, (&Connection{ID: "c1", OwnerID: "u1", SourceID: "n1"}).Valid())
	assert.False(t, (&Connection{ID: "c1", OwnerID: "u1", SourceID: "n1", TargetID: "n1"}).Valid())
}

func TestConnection_PairKey_Directional(t *testing.T) {
	ab := &Connection{SourceID: "a", TargetID: "b"}
	ba := &Connection{SourceID: "b", TargetID: "a"}
	assert.NotEqual(t, ab.PairKey(), ba.PairKey())
}
