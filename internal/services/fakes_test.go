package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"
)

// memDB is an in-memory stand-in for the PostgreSQL schema. It enforces the
// same constraints the migrations do: foreign keys, unique likes, unique
// follow edges and cascading deletes.
type memDB struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*models.User
	posts    map[string]*models.Post
	likes    map[string]map[string]bool
	media    map[string][]*models.Media
	comments map[string]*models.Comment
	order    map[string]int
	shares   map[string]*models.SharedPost
	follows  map[[2]string]int
	plans    map[string]*models.LearningPlan
	progress map[string]*models.ProgressUpdate
}

func newMemDB() *memDB {
	return &memDB{
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		likes:    make(map[string]map[string]bool),
		media:    make(map[string][]*models.Media),
		comments: make(map[string]*models.Comment),
		order:    make(map[string]int),
		shares:   make(map[string]*models.SharedPost),
		follows:  make(map[[2]string]int),
		plans:    make(map[string]*models.LearningPlan),
		progress: make(map[string]*models.ProgressUpdate),
	}
}

func (db *memDB) next() int {
	db.seq++
	return db.seq
}

func notFound(what, id string) error {
	return apperr.New(apperr.NotFound, "%s %s not found", what, id)
}

// memUsers implements UserStore
type memUsers struct{ db *memDB }

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == user.Email {
			return apperr.New(apperr.InvalidArgument, "email already registered")
		}
	}
	cp := *user
	s.db.users[user.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user", email)
}

func (s memUsers) Exists(_ context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.users[id]
	return ok, nil
}

func (s memUsers) UpdateProfile(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[user.ID]
	if !ok {
		return notFound("user", user.ID)
	}
	u.Name = user.Name
	u.Bio = user.Bio
	u.ProfilePhotoURL = user.ProfilePhotoURL
	return nil
}

func (s memUsers) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.PushToken = pushToken
	return nil
}

// memPosts implements PostStore
type memPosts struct{ db *memDB }

func (s memPosts) Create(_ context.Context, post *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[post.UserID]; !ok {
		return notFound("user", post.UserID)
	}
	s.db.posts[post.ID] = &models.Post{
		ID:        post.ID,
		UserID:    post.UserID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}
	s.db.order[post.ID] = s.db.next()
	return nil
}

// load assembles the aggregate; callers hold the lock
func (s memPosts) load(id string) *models.Post {
	row, ok := s.db.posts[id]
	if !ok {
		return nil
	}
	post := &models.Post{
		ID:         row.ID,
		UserID:     row.UserID,
		AuthorName: s.db.users[row.UserID].Name,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
	}
	for userID := range s.db.likes[id] {
		post.LikedBy = append(post.LikedBy, userID)
	}
	sort.Strings(post.LikedBy)
	post.Likes = len(post.LikedBy)
	for _, m := range s.db.media[id] {
		cp := *m
		post.Media = append(post.Media, &cp)
	}
	for _, c := range s.db.comments {
		if c.PostID == id {
			cp := *c
			cp.AuthorName = s.db.users[c.UserID].Name
			post.Comments = append(post.Comments, &cp)
		}
	}
	sort.Slice(post.Comments, func(i, j int) bool {
		return s.db.order[post.Comments[i].ID] < s.db.order[post.Comments[j].ID]
	})
	return post
}

func (s memPosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	post := s.load(id)
	if post == nil {
		return nil, notFound("post", id)
	}
	return post, nil
}

func (s memPosts) GetByIDs(_ context.Context, ids []string) (map[string]*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[string]*models.Post)
	for _, id := range ids {
		if post := s.load(id); post != nil {
			out[id] = post
		}
	}
	return out, nil
}

func (s memPosts) list(userID string) []*models.Post {
	var out []*models.Post
	for id, row := range s.db.posts {
		if userID == "" || row.UserID == userID {
			out = append(out, s.load(id))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.order[out[i].ID] > s.db.order[out[j].ID]
	})
	return out
}

func (s memPosts) List(_ context.Context) ([]*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(""), nil
}

func (s memPosts) ListByUser(_ context.Context, userID string) ([]*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(userID), nil
}

func (s memPosts) OwnerID(_ context.Context, postID string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	row, ok := s.db.posts[postID]
	if !ok {
		return "", notFound("post", postID)
	}
	return row.UserID, nil
}

func (s memPosts) Update(_ context.Context, postID string, content *string, media []*models.Media) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	row, ok := s.db.posts[postID]
	if !ok {
		return notFound("post", postID)
	}
	if content != nil {
		row.Content = *content
	}
	if media != nil {
		s.db.media[postID] = media
	}
	return nil
}

func (s memPosts) Delete(_ context.Context, postID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[postID]; !ok {
		return notFound("post", postID)
	}
	for id, share := range s.db.shares {
		if share.OriginalPostID == postID {
			delete(s.db.shares, id)
		}
	}
	for id, c := range s.db.comments {
		if c.PostID == postID {
			delete(s.db.comments, id)
		}
	}
	delete(s.db.media, postID)
	delete(s.db.likes, postID)
	delete(s.db.posts, postID)
	return nil
}

func (s memPosts) ToggleLike(_ context.Context, postID, userID string) (models.LikeResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[postID]; !ok {
		return models.LikeResult{}, notFound("post", postID)
	}
	if _, ok := s.db.users[userID]; !ok {
		return models.LikeResult{}, notFound("user", userID)
	}
	set := s.db.likes[postID]
	if set == nil {
		set = make(map[string]bool)
		s.db.likes[postID] = set
	}
	liked := !set[userID]
	if liked {
		set[userID] = true
	} else {
		delete(set, userID)
	}
	return models.LikeResult{Liked: liked, LikeCount: len(set)}, nil
}

// memMedia implements MediaStore
type memMedia struct {
	db  *memDB
	err error
}

func (s memMedia) Create(_ context.Context, media *models.Media) error {
	if s.err != nil {
		return s.err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[media.PostID]; !ok {
		return notFound("post", media.PostID)
	}
	cp := *media
	s.db.media[media.PostID] = append(s.db.media[media.PostID], &cp)
	return nil
}

// memComments implements CommentStore
type memComments struct{ db *memDB }

func (s memComments) Create(_ context.Context, comment *models.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[comment.PostID]; !ok {
		return notFound("post", comment.PostID)
	}
	cp := *comment
	s.db.comments[comment.ID] = &cp
	s.db.order[comment.ID] = s.db.next()
	return nil
}

func (s memComments) GetByID(_ context.Context, id string) (*models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return nil, notFound("comment", id)
	}
	cp := *c
	return &cp, nil
}

func (s memComments) UpdateContent(_ context.Context, id, content string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.comments[id]
	if !ok {
		return notFound("comment", id)
	}
	c.Content = content
	return nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.comments[id]; !ok {
		return notFound("comment", id)
	}
	delete(s.db.comments, id)
	return nil
}

func (s memComments) ListByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	post := memPosts{s.db}.load(postID)
	if post == nil {
		return []*models.Comment{}, nil
	}
	return post.Comments, nil
}

// memShares implements ShareStore
type memShares struct{ db *memDB }

func (s memShares) Create(_ context.Context, share *models.SharedPost) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.posts[share.OriginalPostID]; !ok {
		return notFound("post", share.OriginalPostID)
	}
	cp := *share
	s.db.shares[share.ID] = &cp
	s.db.order[share.ID] = s.db.next()
	return nil
}

func (s memShares) GetByID(_ context.Context, id string) (*models.SharedPost, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	share, ok := s.db.shares[id]
	if !ok {
		return nil, notFound("shared post", id)
	}
	cp := *share
	return &cp, nil
}

func (s memShares) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.shares[id]; !ok {
		return notFound("shared post", id)
	}
	delete(s.db.shares, id)
	return nil
}

func (s memShares) ListByUser(_ context.Context, userID string) ([]*models.SharedPost, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []*models.SharedPost{}
	for _, share := range s.db.shares {
		if share.UserID == userID {
			cp := *share
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.order[out[i].ID] > s.db.order[out[j].ID]
	})
	return out, nil
}

// memFollows implements FollowStore. conflicts makes the next N Follow calls
// fail with ConflictRetryable.
type memFollows struct {
	db        *memDB
	conflicts *int
}

func (s memFollows) Follow(_ context.Context, followerID, followeeID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.conflicts != nil && *s.conflicts > 0 {
		*s.conflicts--
		return apperr.New(apperr.ConflictRetryable, "serialization failure")
	}
	if _, ok := s.db.users[followerID]; !ok {
		return notFound("user", followerID)
	}
	if _, ok := s.db.users[followeeID]; !ok {
		return notFound("user", followeeID)
	}
	key := [2]string{followerID, followeeID}
	if _, ok := s.db.follows[key]; !ok {
		s.db.follows[key] = s.db.next()
	}
	return nil
}

func (s memFollows) Unfollow(_ context.Context, followerID, followeeID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.follows, [2]string{followerID, followeeID})
	return nil
}

func (s memFollows) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.follows[[2]string{followerID, followeeID}]
	return ok, nil
}

func (s memFollows) list(userID string, followers bool) []models.UserSummary {
	type edge struct {
		user  *models.User
		order int
	}
	var edges []edge
	for key, order := range s.db.follows {
		switch {
		case followers && key[1] == userID:
			edges = append(edges, edge{s.db.users[key[0]], order})
		case !followers && key[0] == userID:
			edges = append(edges, edge{s.db.users[key[1]], order})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].order < edges[j].order })
	out := make([]models.UserSummary, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.user.Summary())
	}
	return out
}

func (s memFollows) ListFollowers(_ context.Context, userID string) ([]models.UserSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(userID, true), nil
}

func (s memFollows) ListFollowing(_ context.Context, userID string) ([]models.UserSummary, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(userID, false), nil
}

// fakeNotifier records notifications synchronously
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	RecipientID string
	Message     string
}

func (n *fakeNotifier) Notify(_ context.Context, recipientID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{recipientID, message})
}

func (n *fakeNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

// fakeStorage stores files in memory. Files whose name is in fail are
// rejected with a StorageError.
type fakeStorage struct {
	mu     sync.Mutex
	fail   map[string]bool
	stored []string
}

func (s *fakeStorage) Store(_ context.Context, data []byte, contentType, originalName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[originalName] {
		return "", apperr.Wrap(apperr.StorageError, errors.New("bucket unavailable"), "failed to upload %s", originalName)
	}
	url := fmt.Sprintf("https://cdn.test/media/%d-%s", len(s.stored), originalName)
	s.stored = append(s.stored, url)
	return url, nil
}

// memPlans implements PlanStore. Plans are stored as deep copies.
type memPlans struct{ db *memDB }

func clonePlan(p *models.LearningPlan) *models.LearningPlan {
	cp := *p
	cp.Tasks = make([]*models.PlanTask, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		task := *t
		cp.Tasks = append(cp.Tasks, &task)
	}
	return &cp
}

func (s memPlans) Create(_ context.Context, plan *models.LearningPlan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[plan.UserID]; !ok {
		return notFound("user", plan.UserID)
	}
	s.db.plans[plan.ID] = clonePlan(plan)
	s.db.order[plan.ID] = s.db.next()
	return nil
}

func (s memPlans) GetByID(_ context.Context, id string) (*models.LearningPlan, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.plans[id]
	if !ok {
		return nil, notFound("learning plan", id)
	}
	return clonePlan(p), nil
}

func (s memPlans) list(userID string) []*models.LearningPlan {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []*models.LearningPlan{}
	for _, p := range s.db.plans {
		if userID == "" || p.UserID == userID {
			out = append(out, clonePlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.order[out[i].ID] > s.db.order[out[j].ID]
	})
	return out
}

func (s memPlans) List(_ context.Context) ([]*models.LearningPlan, error) {
	return s.list(""), nil
}

func (s memPlans) ListByUser(_ context.Context, userID string) ([]*models.LearningPlan, error) {
	return s.list(userID), nil
}

func (s memPlans) OwnerID(_ context.Context, planID string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.plans[planID]
	if !ok {
		return "", notFound("learning plan", planID)
	}
	return p.UserID, nil
}

func (s memPlans) Replace(_ context.Context, plan *models.LearningPlan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.plans[plan.ID]; !ok {
		return notFound("learning plan", plan.ID)
	}
	s.db.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (s memPlans) Delete(_ context.Context, planID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.plans[planID]; !ok {
		return notFound("learning plan", planID)
	}
	delete(s.db.plans, planID)
	return nil
}

func (s memPlans) Extend(_ context.Context, planID string, endDate time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.plans[planID]
	if !ok {
		return notFound("learning plan", planID)
	}
	p.EndDate = &endDate
	p.Extended = true
	return nil
}

func (s memPlans) findTask(taskID string) (*models.LearningPlan, *models.PlanTask) {
	for _, p := range s.db.plans {
		for _, t := range p.Tasks {
			if t.ID == taskID {
				return p, t
			}
		}
	}
	return nil, nil
}

func (s memPlans) TaskOwnerID(_ context.Context, taskID string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, _ := s.findTask(taskID)
	if p == nil {
		return "", notFound("task", taskID)
	}
	return p.UserID, nil
}

func (s memPlans) CompleteTask(_ context.Context, taskID string, at time.Time) (*models.PlanTask, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, t := s.findTask(taskID)
	if t == nil {
		return nil, notFound("task", taskID)
	}
	t.Completed = true
	if t.CompletedAt == nil {
		t.CompletedAt = &at
	}
	cp := *t
	return &cp, nil
}

// memProgress implements ProgressStore
type memProgress struct{ db *memDB }

func (s memProgress) Create(_ context.Context, update *models.ProgressUpdate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[update.UserID]; !ok {
		return notFound("user", update.UserID)
	}
	cp := *update
	s.db.progress[update.ID] = &cp
	s.db.order[update.ID] = s.db.next()
	return nil
}

func (s memProgress) GetByID(_ context.Context, id string) (*models.ProgressUpdate, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.progress[id]
	if !ok {
		return nil, notFound("progress update", id)
	}
	cp := *u
	return &cp, nil
}

func (s memProgress) Update(_ context.Context, id string, input models.ProgressInput) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.progress[id]
	if !ok {
		return notFound("progress update", id)
	}
	u.Content = input.Content
	u.Completed = input.Completed
	u.NewSkills = input.NewSkills
	return nil
}

func (s memProgress) Delete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.progress[id]; !ok {
		return notFound("progress update", id)
	}
	delete(s.db.progress, id)
	return nil
}

func (s memProgress) List(_ context.Context) ([]*models.ProgressUpdate, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []*models.ProgressUpdate{}
	for _, u := range s.db.progress {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.db.order[out[i].ID] > s.db.order[out[j].ID]
	})
	return out, nil
}

// fixture wires every service over one memDB
type fixture struct {
	db       *memDB
	notifier *fakeNotifier
	storage  *fakeStorage
	users    *UserService
	posts    *PostService
	comments *CommentService
	shares   *ShareService
	follows  *FollowService
	plans    *PlanService
	progress *ProgressService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newMemDB()
	notifier := &fakeNotifier{}
	storage := &fakeStorage{fail: make(map[string]bool)}

	userRepo := memUsers{db}
	postRepo := memPosts{db}
	media := NewMediaService(memMedia{db: db}, storage)

	return &fixture{
		db:       db,
		notifier: notifier,
		storage:  storage,
		users:    NewUserService(userRepo, storage, "test-secret", time.Hour),
		posts:    NewPostService(postRepo, userRepo, media, notifier),
		comments: NewCommentService(memComments{db}, postRepo, userRepo, notifier),
		shares:   NewShareService(memShares{db}, postRepo, userRepo, notifier),
		follows:  NewFollowService(memFollows{db: db}, userRepo, notifier),
		plans:    NewPlanService(memPlans{db}, userRepo),
		progress: NewProgressService(memProgress{db}, userRepo),
	}
}

// user registers a user and returns its ID
func (f *fixture) user(t *testing.T, name string) string {
	t.Helper()
	u, _, err := f.users.Register(context.Background(), name+"@example.com", name)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u.ID
}

// post creates a text post and returns its ID
func (f *fixture) post(t *testing.T, authorID, content string) string {
	t.Helper()
	res, err := f.posts.CreatePost(context.Background(), authorID, content, nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return res.Post.ID
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
