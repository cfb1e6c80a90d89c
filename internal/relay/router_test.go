package relay

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nightpost/relay/internal/models"
	"github.com/nightpost/relay/internal/store"
)

type recordedDelivery struct {
	body string
	item ContentItem
}

// recordingSink captures deliveries instead of touching a real channel.
type recordingSink struct {
	deliveries []recordedDelivery
}

func (s *recordingSink) Deliver(body string, item ContentItem) error {
	s.deliveries = append(s.deliveries, recordedDelivery{body: body, item: item})
	return nil
}

type routerFixture struct {
	router       *Router
	participants *store.Participants
	stopWords    *store.StopWords
	public       *recordingSink
	review       *recordingSink
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(&models.Participant{}, &models.StopWord{}, &models.ContentLog{}))

	f := &routerFixture{
		participants: store.NewParticipants(database),
		stopWords:    store.NewStopWords(database),
		public:       &recordingSink{},
		review:       &recordingSink{},
	}
	f.router = NewRouter(f.participants, f.stopWords, f.public, f.review)
	return f
}

func textItem(sender, text string) ContentItem {
	return ContentItem{
		SenderID:    sender,
		DisplayName: "Sender " + sender,
		Handle:      sender,
		Kind:        KindText,
		Text:        text,
	}
}

func TestFirstSubmissionAssignsNextPseudonym(t *testing.T) {
	f := newRouterFixture(t)

	out, err := f.router.Submit(textItem("u1", "hello"))
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, out.Status)
	assert.Equal(t, 1, out.Pseudonym)

	out, err = f.router.Submit(textItem("u2", "hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pseudonym)

	// Same sender keeps the same number.
	out, err = f.router.Submit(textItem("u1", "again"))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Pseudonym)
}

func TestBannedSenderReachesNoChannel(t *testing.T) {
	f := newRouterFixture(t)

	_, err := f.router.Submit(textItem("u1", "first"))
	require.NoError(t, err)
	require.NoError(t, f.participants.SetBanned("u1", true))
	require.NoError(t, f.participants.SetTrusted("u1", true)) // ban wins over trust

	f.public.deliveries = nil
	f.review.deliveries = nil

	out, err := f.router.Submit(textItem("u1", "anything at all"))
	require.NoError(t, err)
	assert.Equal(t, StatusRejectedBanned, out.Status)
	assert.Equal(t, "You are banned and cannot send messages.", out.Reply)
	assert.Empty(t, f.public.deliveries)
	assert.Empty(t, f.review.deliveries)
}

func TestTrustedSenderPublishesDirectlyAndGainsReputation(t *testing.T) {
	f := newRouterFixture(t)

	require.NoError(t, f.participants.Upsert("u1", "Alice", "alice"))
	require.NoError(t, f.participants.SetTrusted("u1", true))

	out, err := f.router.Submit(textItem("u1", "hello world"))
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, out.Status)
	assert.Equal(t, 1, out.Pseudonym)

	require.Len(t, f.public.deliveries, 1)
	assert.Empty(t, f.review.deliveries)
	// Header shows the pre-increment reputation.
	assert.Equal(t, "#1 (reputation: 0):\nhello world", f.public.deliveries[0].body)

	p, err := f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Reputation)
}

func TestUntrustedSenderGoesToReview(t *testing.T) {
	f := newRouterFixture(t)

	out, err := f.router.Submit(textItem("u1", "please publish me"))
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, out.Status)
	assert.Equal(t, "Your message has been submitted for review.", out.Reply)

	assert.Empty(t, f.public.deliveries)
	require.Len(t, f.review.deliveries, 1)

	body := f.review.deliveries[0].body
	assert.Contains(t, body, "New message for review:")
	assert.Contains(t, body, "Number: #1")
	assert.Contains(t, body, "ID: u1")
	assert.Contains(t, body, "Reputation: 0")
	assert.Contains(t, body, "please publish me")

	p, err := f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Reputation)
}

func TestStopWordRejectionIsCaseInsensitive(t *testing.T) {
	f := newRouterFixture(t)
	require.NoError(t, f.stopWords.Add("badword"))

	out, err := f.router.Submit(textItem("u1", "this has a BadWord inside"))
	require.NoError(t, err)
	assert.Equal(t, StatusRejectedFilter, out.Status)
	assert.Equal(t, "Your message contains forbidden words.", out.Reply)
	assert.Empty(t, f.public.deliveries)
	assert.Empty(t, f.review.deliveries)

	// Rejected before numbering: ban and filter gates run first.
	p, err := f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Nil(t, p.Pseudonym)
}

func TestMediaBypassesStopWordFilter(t *testing.T) {
	f := newRouterFixture(t)
	require.NoError(t, f.stopWords.Add("photo"))

	out, err := f.router.Submit(ContentItem{
		SenderID: "u1",
		Kind:     KindPhoto,
		MediaRef: "file-123",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, out.Status)
	assert.Equal(t, "Your media has been submitted for review.", out.Reply)

	require.Len(t, f.review.deliveries, 1)
	body := f.review.deliveries[0].body
	assert.Contains(t, body, "New media for review:")
	assert.Contains(t, body, "Media type: photo")
	assert.Equal(t, "file-123", f.review.deliveries[0].item.MediaRef)
}

func TestTrustedMediaPublishesHeaderAsCaption(t *testing.T) {
	f := newRouterFixture(t)
	require.NoError(t, f.participants.Upsert("u1", "", ""))
	require.NoError(t, f.participants.SetTrusted("u1", true))

	out, err := f.router.Submit(ContentItem{SenderID: "u1", Kind: KindVoice, MediaRef: "voice-9"})
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, out.Status)

	require.Len(t, f.public.deliveries, 1)
	assert.Equal(t, "#1 (reputation: 0):", f.public.deliveries[0].body)
	assert.Equal(t, "voice-9", f.public.deliveries[0].item.MediaRef)
}

func TestUpsertRefreshesMetadataEvenWhenBanned(t *testing.T) {
	f := newRouterFixture(t)

	_, err := f.router.Submit(textItem("u1", "first"))
	require.NoError(t, err)
	require.NoError(t, f.participants.SetBanned("u1", true))

	item := textItem("u1", "second")
	item.DisplayName = "New Name"
	item.Handle = "newhandle"
	_, err = f.router.Submit(item)
	require.NoError(t, err)

	p, err := f.participants.ByID("u1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", p.DisplayName)
	assert.Equal(t, "newhandle", p.Handle)
}
