package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-ai-api/internal/domain/entity"
)

// fakeUserRepo 只实现索引器用到的方法，其余方法直接 panic 以暴露误用
type fakeUserRepo struct {
	users    map[string]*entity.User
	getErr   error
	readyErr error
	ready    []string
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.users[id], nil
}

func (f *fakeUserRepo) SetRecommendationsReady(ctx context.Context, id string, ready bool) error {
	if f.readyErr != nil {
		return f.readyErr
	}
	if ready {
		f.ready = append(f.ready, id)
	}
	return nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { panic("unexpected") }
func (f *fakeUserRepo) GetByProfileID(ctx context.Context, profileID int64) (*entity.User, error) {
	panic("unexpected")
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	panic("unexpected")
}
func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error  { panic("unexpected") }
func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error { panic("unexpected") }
func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	panic("unexpected")
}

type fakeEmbedder struct {
	texts   []string
	vectors [][]float64
	err     error
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	f.texts = append(f.texts, texts...)
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

type fakeStore struct {
	profileID int64
	vector    []float32
	calls     int
	err       error
}

func (f *fakeStore) UpsertUserEmbedding(ctx context.Context, profileID int64, vector []float32) error {
	f.calls++
	f.profileID = profileID
	f.vector = vector
	return f.err
}

type fakeInvalidator struct {
	keys []string
	err  error
}

func (f *fakeInvalidator) InvalidateRecommendationStatus(ctx context.Context, userID string) error {
	f.keys = append(f.keys, userID)
	return f.err
}

func testUser() *entity.User {
	return &entity.User{
		ID:        "u-7",
		ProfileID: 7,
		Name:      "Alice",
		Genres: []*entity.Genre{
			{ID: "g-1", Name: "fantasy"},
			{ID: "g-2", Name: "mystery"},
		},
	}
}

func TestReindexHappyPath(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{"u-7": testUser()}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.25, 0.5, 0.75}}}
	store := &fakeStore{}
	cache := &fakeInvalidator{}

	idx := NewIndexer(users, embedder, store, cache)
	err := idx.Reindex(context.Background(), "u-7")

	require.NoError(t, err)
	require.Len(t, embedder.texts, 1)
	assert.Contains(t, embedder.texts[0], "Alice")
	assert.Contains(t, embedder.texts[0], "fantasy, mystery")
	assert.Equal(t, int64(7), store.profileID)
	assert.Equal(t, []float32{0.25, 0.5, 0.75}, store.vector)
	assert.Equal(t, []string{"u-7"}, users.ready)
	assert.Equal(t, []string{"u-7"}, cache.keys)
}

func TestReindexUnknownUserIsSilentlySkipped(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.1}}}
	store := &fakeStore{}

	idx := NewIndexer(users, embedder, store, nil)
	err := idx.Reindex(context.Background(), "missing")

	require.NoError(t, err)
	assert.Empty(t, embedder.texts)
	assert.Zero(t, store.calls)
}

func TestReindexEmbedderFailure(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{"u-7": testUser()}}
	embedder := &fakeEmbedder{err: errors.New("embedding service down")}
	store := &fakeStore{}

	idx := NewIndexer(users, embedder, store, nil)
	err := idx.Reindex(context.Background(), "u-7")

	require.Error(t, err)
	assert.Zero(t, store.calls)
	assert.Empty(t, users.ready)
}

func TestReindexStoreFailureDoesNotMarkReady(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{"u-7": testUser()}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.1, 0.2}}}
	store := &fakeStore{err: errors.New("milvus unavailable")}

	idx := NewIndexer(users, embedder, store, nil)
	err := idx.Reindex(context.Background(), "u-7")

	require.Error(t, err)
	assert.Empty(t, users.ready)
}

func TestReindexCacheInvalidationFailureIsNonFatal(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*entity.User{"u-7": testUser()}}
	embedder := &fakeEmbedder{vectors: [][]float64{{0.1}}}
	store := &fakeStore{}
	cache := &fakeInvalidator{err: errors.New("redis down")}

	idx := NewIndexer(users, embedder, store, cache)
	err := idx.Reindex(context.Background(), "u-7")

	require.NoError(t, err)
	assert.Equal(t, []string{"u-7"}, users.ready)
}

func TestBuildProfileTextWithoutGenres(t *testing.T) {
	user := &entity.User{ID: "u-1", Name: "Bob"}
	text := buildProfileText(user)
	assert.Equal(t, "Reader profile for Bob.", text)
}
