package workspace

import (
	"context"
	"sync"
	"testing"
	"time"

	"memorybook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// fakeWorkspaceRepo is an in-memory WorkspaceRepository recording every
// merge write so tests can assert on exactly which fields are named.
type fakeWorkspaceRepo struct {
	mu          sync.Mutex
	ws          *models.Workspace
	ensureCalls int
	mergeCalls  []bson.M
}

func (r *fakeWorkspaceRepo) GetByID(id string) (*models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ws, nil
}

func (r *fakeWorkspaceRepo) EnsureWorkspace(seed *models.Workspace) (*models.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureCalls++
	if r.ws == nil {
		r.ws = seed
	}
	return r.ws, nil
}

func (r *fakeWorkspaceRepo) MergeSet(id string, doc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeCalls = append(r.mergeCalls, doc)
	return nil
}

func (r *fakeWorkspaceRepo) lastMerge() bson.M {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.mergeCalls) == 0 {
		return nil
	}
	return r.mergeCalls[len(r.mergeCalls)-1]
}

// fakeMemberRepo satisfies the user repository with just enough to
// record the membership stamp Initialize writes.
type fakeMemberRepo struct {
	mu       sync.Mutex
	setCalls []bson.M
}

func (r *fakeMemberRepo) GetByID(id string) (*models.User, error)       { return nil, nil }
func (r *fakeMemberRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (r *fakeMemberRepo) Create(u *models.User) error                   { return nil }
func (r *fakeMemberRepo) UpdateSetDocument(id string, doc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setCalls = append(r.setCalls, doc)
	return nil
}
func (r *fakeMemberRepo) UnsetFields(id string, fields ...string) error            { return nil }
func (r *fakeMemberRepo) AppendLoginHistory(id string, e models.LoginEntry) error  { return nil }
func (r *fakeMemberRepo) Delete(id string) error                                   { return nil }

// fakeNotifier records fan-out calls.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	replies  []string
	actors   []string
}

func (n *fakeNotifier) BottleMessagePosted(ctx context.Context, actorEmail, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	n.actors = append(n.actors, actorEmail)
}

func (n *fakeNotifier) BottleReplyPosted(ctx context.Context, actorEmail, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replies = append(n.replies, text)
	n.actors = append(n.actors, actorEmail)
}

const testWorkspaceID = "shared_workspace_main"

func newTestService(repo *fakeWorkspaceRepo, notifier Notifier) *DefaultWorkspaceService {
	return &DefaultWorkspaceService{
		Repo:          repo,
		UserRepo:      &fakeMemberRepo{},
		AllowedEmails: []string{"alice@example.com", "bob@example.com"},
		WorkspaceID:   testWorkspaceID,
		Notifier:      notifier,
		Now:           func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func member(email string) *models.User {
	return &models.User{ID: "u-" + email, Email: email}
}

// initialized returns a service holding a workspace whose bottle has an
// existing message, position and reply thread.
func initialized(t *testing.T, repo *fakeWorkspaceRepo, notifier Notifier) *DefaultWorkspaceService {
	t.Helper()
	repo.ws = &models.Workspace{
		ID:            testWorkspaceID,
		Name:          DefaultWorkspaceName,
		AllowedEmails: []string{"alice@example.com", "bob@example.com"},
		Bottle: &models.Bottle{
			Message: "our first note",
			Lat:     10.5,
			Lng:     99.25,
			Replies: []models.BottleReply{
				{ID: "r1", Text: "found it!", Author: "bob@example.com"},
			},
		},
	}
	svc := newTestService(repo, notifier)
	require.NoError(t, svc.Initialize(context.Background(), member("alice@example.com")))
	return svc
}

func TestInitializeCreatesWorkspaceWithSeedState(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	users := &fakeMemberRepo{}
	svc := newTestService(repo, nil)
	svc.UserRepo = users

	require.NoError(t, svc.Initialize(context.Background(), member("alice@example.com")))

	require.True(t, svc.IsAllowedUser())
	ws := svc.Workspace()
	require.NotNil(t, ws)
	assert.Equal(t, testWorkspaceID, ws.ID)
	assert.Equal(t, DefaultWorkspaceName, ws.Name)
	require.NotNil(t, ws.Bottle)
	assert.Equal(t, DefaultBottleMessage, ws.Bottle.Message)
	assert.Equal(t, DefaultBottleLat, ws.Bottle.Lat)
	assert.Equal(t, DefaultBottleLng, ws.Bottle.Lng)
	assert.Empty(t, ws.Bottle.Replies)

	// Membership stamp is a merge write naming only its own fields.
	require.Len(t, users.setCalls, 1)
	stamp := users.setCalls[0]
	assert.Equal(t, testWorkspaceID, stamp["workspace_id"])
	assert.NotContains(t, stamp, "session_expiry")
}

func TestInitializeSecondMemberAdoptsExistingWorkspace(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	first := newTestService(repo, nil)
	require.NoError(t, first.Initialize(context.Background(), member("alice@example.com")))
	require.Equal(t, 1, repo.ensureCalls)

	second := newTestService(repo, nil)
	require.NoError(t, second.Initialize(context.Background(), member("bob@example.com")))

	// The existing document is adopted; no second insert attempt.
	assert.Equal(t, 1, repo.ensureCalls)
	assert.Equal(t, first.Workspace().ID, second.Workspace().ID)
}

func TestInitializeNotAllowedIsSoft(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	svc := newTestService(repo, nil)

	err := svc.Initialize(context.Background(), member("mallory@example.com"))

	require.NoError(t, err, "rejection is a flag, not an error")
	assert.False(t, svc.IsAllowedUser())
	assert.Nil(t, svc.Workspace())
	assert.Equal(t, 0, repo.ensureCalls)
}

func TestUpdateBottleMessageStartsFreshThread(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	notifier := &fakeNotifier{}
	svc := initialized(t, repo, notifier)

	require.NoError(t, svc.UpdateBottleMessage(context.Background(), "alice@example.com", "a brand new note"))

	b := svc.Workspace().Bottle
	assert.Equal(t, "a brand new note", b.Message)
	assert.Empty(t, b.Replies, "a new message clears the reply thread")
	assert.Equal(t, 10.5, b.Lat, "position survives a message update")
	assert.Equal(t, 99.25, b.Lng)

	// The write replaces the bottle field group and nothing else.
	last := repo.lastMerge()
	require.NotNil(t, last)
	require.Contains(t, last, "bottle")
	assert.NotContains(t, last, "name")
	assert.NotContains(t, last, "allowed_emails")

	assert.Equal(t, []string{"a brand new note"}, notifier.messages)
	// The acting member is named so the fan-out can skip them; nobody
	// should be pushed their own bottle.
	assert.Equal(t, []string{"alice@example.com"}, notifier.actors)
}

func TestMoveBottlePreservesMessageAndReplies(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	svc := initialized(t, repo, nil)

	require.NoError(t, svc.MoveBottle(context.Background(), 7.75, 80.5))

	b := svc.Workspace().Bottle
	assert.Equal(t, 7.75, b.Lat)
	assert.Equal(t, 80.5, b.Lng)
	assert.Equal(t, "our first note", b.Message)
	require.Len(t, b.Replies, 1)

	// Only the coordinate fields are named, so a concurrent reply can
	// never be clobbered by a stale move.
	last := repo.lastMerge()
	require.NotNil(t, last)
	assert.Contains(t, last, "bottle.lat")
	assert.Contains(t, last, "bottle.lng")
	assert.Contains(t, last, "bottle.last_moved_at")
	assert.NotContains(t, last, "bottle")
	assert.NotContains(t, last, "bottle.message")
	assert.NotContains(t, last, "bottle.replies")
}

func TestRelocateBottleAppliesInjectedOffset(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	svc := initialized(t, repo, nil)
	svc.Offset = func() (float64, float64) { return 0.01, -0.02 }

	require.NoError(t, svc.RelocateBottle(context.Background()))

	b := svc.Workspace().Bottle
	assert.InDelta(t, 10.51, b.Lat, 1e-9)
	assert.InDelta(t, 99.23, b.Lng, 1e-9)
}

func TestReplyToBottleAppends(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	notifier := &fakeNotifier{}
	svc := initialized(t, repo, notifier)

	require.NoError(t, svc.ReplyToBottle(context.Background(), "alice@example.com", "hello back"))

	b := svc.Workspace().Bottle
	require.Len(t, b.Replies, 2)
	added := b.Replies[1]
	assert.Equal(t, "hello back", added.Text)
	assert.Equal(t, "alice@example.com", added.Author)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "found it!", b.Replies[0].Text, "existing replies survive")

	last := repo.lastMerge()
	require.NotNil(t, last)
	assert.Contains(t, last, "bottle.replies")
	assert.NotContains(t, last, "bottle")

	assert.Equal(t, []string{"hello back"}, notifier.replies)
	assert.Equal(t, []string{"alice@example.com"}, notifier.actors)
}

func TestReplyWithoutBottleIsNoOp(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	repo.ws = &models.Workspace{ID: testWorkspaceID, Name: DefaultWorkspaceName,
		AllowedEmails: []string{"alice@example.com"}}
	svc := newTestService(repo, nil)
	require.NoError(t, svc.Initialize(context.Background(), member("alice@example.com")))

	require.NoError(t, svc.ReplyToBottle(context.Background(), "alice@example.com", "into the void"))
	assert.Empty(t, repo.mergeCalls)
}

func TestDeleteBottleReply(t *testing.T) {
	repo := &fakeWorkspaceRepo{}
	svc := initialized(t, repo, nil)

	require.NoError(t, svc.DeleteBottleReply(context.Background(), "r1"))
	assert.Empty(t, svc.Workspace().Bottle.Replies)

	last := repo.lastMerge()
	require.NotNil(t, last)
	assert.Contains(t, last, "bottle.replies")

	// Deleting an id that is not there writes nothing.
	writes := len(repo.mergeCalls)
	require.NoError(t, svc.DeleteBottleReply(context.Background(), "r-unknown"))
	assert.Equal(t, writes, len(repo.mergeCalls))
}
