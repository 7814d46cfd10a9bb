package configsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theimperious1/OCRAutoModerator/automod/platform"
	"github.com/theimperious1/OCRAutoModerator/automod/rules"
	"github.com/theimperious1/OCRAutoModerator/automod/snapshot"
	"github.com/theimperious1/OCRAutoModerator/util/cliutil"
)

var catDoc = `
type: image
rule: ["kitten"]
action: remove
action_reason: "no cats"
priority: 1
`

var brokenDoc = `
type: image
rule: ["kitten"]
action: remove
priority: 1
`

func TestDefaultDocument(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	rs, err := Check(DefaultDocument)
	require.NoError(err)
	assert.Equal(5, rs.Len())
	for i, r := range rs.Rules {
		assert.Equal(i+1, r.Priority)
		assert.Equal(rules.DefaultLanguage, r.Recognizers)
	}
	assert.NotNil(rs.Rules[0].Directives.Comment)
}

func TestManagerLoad(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	docs := NewMemDocumentStore()
	m := NewManager(docs, snapshot.NewTable(), nil)

	// missing document is created from the default
	snap, err := m.Load(ctx, "Pics")
	require.NoError(err)
	assert.Equal("pics", snap.Community)
	assert.Equal(5, snap.Rules.Len())
	stored, err := docs.GetDocument(ctx, "pics")
	require.NoError(err)
	assert.Equal(DefaultDocument, stored)

	require.NoError(docs.PutDocument(ctx, "pics", catDoc, "edit"))
	snap, err = m.Load(ctx, "pics")
	require.NoError(err)
	assert.Equal(1, snap.Rules.Len())
	assert.Same(snap, m.Table.Get("PICS"))

	// a broken edit leaves the previous snapshot in place
	require.NoError(docs.PutDocument(ctx, "pics", brokenDoc, "edit"))
	_, err = m.Load(ctx, "pics")
	var missing *rules.MissingFieldError
	assert.True(errors.As(err, &missing))
	assert.Equal("action_reason", missing.Field)
	assert.Same(snap, m.Table.Get("pics"))
}

func TestManagerReset(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	docs := NewMemDocumentStore()
	m := NewManager(docs, snapshot.NewTable(), nil)

	require.NoError(docs.PutDocument(ctx, "pics", brokenDoc, "edit"))
	snap, err := m.Reset(ctx, "pics")
	require.NoError(err)
	assert.Equal(5, snap.Rules.Len())
	assert.Len(docs.Revisions["pics"], 2)

	// reset creates the document when missing
	_, err = m.Reset(ctx, "aww")
	require.NoError(err)
	stored, err := docs.GetDocument(ctx, "aww")
	require.NoError(err)
	assert.Equal(DefaultDocument, stored)
}

func TestManagerJoin(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	docs := NewMemDocumentStore()
	m := NewManager(docs, snapshot.NewTable(), nil)

	require.NoError(docs.PutDocument(ctx, "pics", brokenDoc, "edit"))
	snap, err := m.Join(ctx, "pics")
	require.NoError(err)
	assert.Equal(5, snap.Rules.Len())
	// the broken document is kept for the moderators to fix
	stored, _ := docs.GetDocument(ctx, "pics")
	assert.Equal(brokenDoc, stored)

	require.NoError(docs.PutDocument(ctx, "aww", catDoc, "edit"))
	n := m.JoinAll(ctx, []string{"pics", "aww", "videos"}, 2)
	assert.Equal(3, n)
	assert.Equal([]string{"aww", "pics", "videos"}, m.Table.Communities())

	m.Forget("videos")
	assert.Nil(m.Table.Get("videos"))
}

type failingWiki struct{}

func (failingWiki) GetPage(ctx context.Context, community, page string) (string, error) {
	return "", errors.New("403 forbidden")
}

func (failingWiki) PutPage(ctx context.Context, community, page, content, reason string) error {
	return errors.New("403 forbidden")
}

func TestManagerStoreError(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	m := NewManager(&WikiDocumentStore{Wiki: failingWiki{}}, snapshot.NewTable(), nil)
	_, err := m.Join(ctx, "pics")
	var se *StoreError
	assert.True(errors.As(err, &se))
	assert.Nil(m.Table.Get("pics"))

	_, err = m.Reset(ctx, "pics")
	assert.True(errors.As(err, &se))
}

func TestWikiDocumentStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	mc := platform.NewMockClient()
	mirror := NewMemDocumentStore()
	store := &WikiDocumentStore{Wiki: mc, Mirror: mirror}

	_, err := store.GetDocument(ctx, "pics")
	assert.True(errors.Is(err, ErrNoDocument))

	require.NoError(store.PutDocument(ctx, "pics", catDoc, "created"))
	assert.Equal(catDoc, mc.Pages["pics/"+WikiPage])

	// moderator edits the page directly
	mc.Pages["pics/"+WikiPage] = brokenDoc
	got, err := store.GetDocument(ctx, "pics")
	require.NoError(err)
	assert.Equal(brokenDoc, got)
	assert.Len(mirror.Revisions["pics"], 2)

	// unchanged reads do not add revisions
	_, err = store.GetDocument(ctx, "pics")
	require.NoError(err)
	assert.Len(mirror.Revisions["pics"], 2)
}

func TestSQLDocumentStore(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	db, err := cliutil.SetupDatabase("sqlite://"+t.TempDir()+"/docs.sqlite", 1)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	store, err := NewSQLDocumentStore(db)
	require.NoError(err)

	_, err = store.GetDocument(ctx, "pics")
	assert.True(errors.Is(err, ErrNoDocument))

	require.NoError(store.PutDocument(ctx, "Pics", catDoc, "first"))
	require.NoError(store.PutDocument(ctx, "pics", brokenDoc, "second"))

	got, err := store.GetDocument(ctx, "PICS")
	require.NoError(err)
	assert.Equal(brokenDoc, got)

	hist, err := store.History(ctx, "pics", 10)
	require.NoError(err)
	require.Len(hist, 2)
	assert.Equal("second", hist[0].Reason)
	assert.Equal("first", hist[1].Reason)
}

func TestMessages(t *testing.T) {
	assert := assert.New(t)

	subject, body := JoinSuccessMessage("OCRAutoModerator", "pics")
	assert.Equal("OCRAutoModerator has been set up!", subject)
	assert.Contains(body, "https://www.reddit.com/r/pics/wiki/edit/ocr_auto_moderator")
	assert.Contains(body, "to=OCRAutoModerator&subject=update&message=pics")

	subject, body = PermissionErrorMessage("OCRAutoModerator", "pics")
	assert.Equal("Permissions issue with OCRAutoModerator", subject)
	assert.Contains(body, "subject=reset&message=pics")
}
