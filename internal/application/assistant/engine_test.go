package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-ai-api/internal/domain/entity"
	apperrors "book-ai-api/pkg/errors"
)

// fakeUserRepo 只实现引擎用到的查询，其余方法直接 panic 以暴露误用
type fakeUserRepo struct {
	users map[int64]*entity.User
	err   error
	calls []string
}

func (f *fakeUserRepo) GetByProfileID(ctx context.Context, profileID int64) (*entity.User, error) {
	f.calls = append(f.calls, fmt.Sprintf("user:%d", profileID))
	if f.err != nil {
		return nil, f.err
	}
	return f.users[profileID], nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error  { panic("unexpected") }
func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	panic("unexpected")
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	panic("unexpected")
}
func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { panic("unexpected") }
func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	panic("unexpected")
}
func (f *fakeUserRepo) SetRecommendationsReady(ctx context.Context, id string, ready bool) error {
	panic("unexpected")
}
func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	panic("unexpected")
}

type fakeGenreRepo struct {
	genres []*entity.Genre
	err    error
	calls  []string
}

func (f *fakeGenreRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Genre, error) {
	f.calls = append(f.calls, "genres:"+userID)
	return f.genres, f.err
}

func (f *fakeGenreRepo) FindOrCreate(ctx context.Context, name string) (*entity.Genre, error) {
	panic("unexpected")
}
func (f *fakeGenreRepo) ReplaceForUser(ctx context.Context, userID string, genres []*entity.Genre) error {
	panic("unexpected")
}

type fakeEmbeddingStore struct {
	vector []float32
	err    error
	calls  []string
}

func (f *fakeEmbeddingStore) GetUserEmbedding(ctx context.Context, profileID int64) ([]float32, error) {
	f.calls = append(f.calls, fmt.Sprintf("embedding:%d", profileID))
	return f.vector, f.err
}

type fakeSearcher struct {
	hits   []*entity.BookHit
	total  int64
	err    error
	params *BookSearchParams
	calls  int
}

func (f *fakeSearcher) SearchBooks(ctx context.Context, params *BookSearchParams) ([]*entity.BookHit, int64, error) {
	f.calls++
	f.params = params
	return f.hits, f.total, f.err
}

// fakeStream 按序吐出 deltas，然后返回 io.EOF 或注入的错误
type fakeStream struct {
	deltas []string
	err    error
	pos    int
	closed bool
}

func (f *fakeStream) Recv() (string, error) {
	if f.pos < len(f.deltas) {
		d := f.deltas[f.pos]
		f.pos++
		return d, nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "", io.EOF
}

func (f *fakeStream) Close() { f.closed = true }

type fakeCompleter struct {
	stream   *fakeStream
	startErr error
	req      *CompletionRequest
	calls    int
}

func (f *fakeCompleter) StreamCompletion(ctx context.Context, req *CompletionRequest) (DeltaStream, error) {
	f.calls++
	f.req = req
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.stream, nil
}

type engineFixture struct {
	users      *fakeUserRepo
	genres     *fakeGenreRepo
	embeddings *fakeEmbeddingStore
	searcher   *fakeSearcher
	completer  *fakeCompleter
	engine     *Engine
}

func newFixture() *engineFixture {
	f := &engineFixture{
		users: &fakeUserRepo{users: map[int64]*entity.User{
			42: {ID: "u-42", ProfileID: 42, Name: "Reader"},
		}},
		genres:     &fakeGenreRepo{genres: []*entity.Genre{{ID: "g-1", Name: "sci-fi"}}},
		embeddings: &fakeEmbeddingStore{vector: []float32{0.1, 0.2, 0.3}},
		searcher:   &fakeSearcher{},
		completer:  &fakeCompleter{stream: &fakeStream{}},
	}
	f.engine = NewEngine(f.users, f.genres, f.embeddings, f.searcher, f.completer, Options{})
	return f
}

func hit(id int64, title string) *entity.BookHit {
	return &entity.BookHit{
		ID:          id,
		Title:       title,
		Author:      "Author of " + title,
		Description: title + " description",
	}
}

func TestAnswerQueryValidation(t *testing.T) {
	f := newFixture()

	_, err := f.engine.AnswerQuery(context.Background(), 42, "   ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParam))

	_, err = f.engine.AnswerQuery(context.Background(), 0, "any recommendation")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParam))

	assert.Empty(t, f.users.calls, "no collaborator should be touched on invalid input")
	assert.Zero(t, f.searcher.calls)
	assert.Zero(t, f.completer.calls)
}

func TestRecommendationPath(t *testing.T) {
	f := newFixture()
	f.searcher.hits = []*entity.BookHit{
		hit(1, "Dune"), hit(2, "Hyperion"), hit(3, "Foundation"),
	}
	f.searcher.total = 3

	turn, err := f.engine.AnswerQuery(context.Background(), 42, "give me a recommendation")
	require.NoError(t, err)

	assert.Equal(t, entity.RouteRecommendation, turn.Route)
	assert.Equal(t, "Here are some personalized recommendations for you:", turn.Response)
	require.NotNil(t, turn.Recommendations)
	require.Len(t, *turn.Recommendations, 3)
	assert.Equal(t, "Dune", (*turn.Recommendations)[0].Title)
	assert.Equal(t, "Author of Dune", (*turn.Recommendations)[0].Author)

	// 协作方调用顺序：用户 -> 题材 -> 画像向量 -> 检索；补全不被触发
	assert.Equal(t, []string{"user:42"}, f.users.calls)
	assert.Equal(t, []string{"genres:u-42"}, f.genres.calls)
	assert.Equal(t, []string{"embedding:42"}, f.embeddings.calls)
	assert.Equal(t, 1, f.searcher.calls)
	assert.Zero(t, f.completer.calls)

	require.NotNil(t, f.searcher.params)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, f.searcher.params.Vector)
	assert.Equal(t, 3, f.searcher.params.ContentTopK)
	assert.Equal(t, 2, f.searcher.params.DescriptionTopK)
}

func TestRecommendationTruncatesToFive(t *testing.T) {
	f := newFixture()
	for i := int64(1); i <= 8; i++ {
		f.searcher.hits = append(f.searcher.hits, hit(i, fmt.Sprintf("Book %d", i)))
	}
	f.searcher.total = 8

	turn, err := f.engine.AnswerQuery(context.Background(), 42, "recommendation")
	require.NoError(t, err)
	require.NotNil(t, turn.Recommendations)
	assert.Len(t, *turn.Recommendations, 5)
	assert.Equal(t, "Book 1", (*turn.Recommendations)[0].Title)
	assert.Equal(t, "Book 5", (*turn.Recommendations)[4].Title)
}

func TestRecommendationZeroHitsIsSuccess(t *testing.T) {
	f := newFixture()
	f.searcher.hits = nil
	f.searcher.total = 0

	turn, err := f.engine.AnswerQuery(context.Background(), 42, "recommendation")
	require.NoError(t, err)
	require.NotNil(t, turn.Recommendations, "recommendations key must be present even when empty")
	assert.Empty(t, *turn.Recommendations)
	assert.Equal(t, "Here are some personalized recommendations for you:", turn.Response)
}

func TestRecommendationUserNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.engine.AnswerQuery(context.Background(), 7, "recommendation")
	assert.True(t, errors.Is(err, apperrors.ErrUserNotFound))
	assert.Empty(t, f.embeddings.calls, "embedding lookup must not run after user miss")
	assert.Zero(t, f.searcher.calls)
}

func TestRecommendationEmbeddingMissing(t *testing.T) {
	for name, vector := range map[string][]float32{
		"absent": nil,
		"empty":  {},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.embeddings.vector = vector

			_, err := f.engine.AnswerQuery(context.Background(), 42, "recommendation")
			assert.True(t, errors.Is(err, apperrors.ErrEmbeddingMissing))
			assert.Zero(t, f.searcher.calls, "search must not run without an embedding")
		})
	}
}

func TestRecommendationSearchFailure(t *testing.T) {
	f := newFixture()
	f.searcher.err = errors.New("milvus unavailable")

	_, err := f.engine.AnswerQuery(context.Background(), 42, "recommendation")
	assert.True(t, errors.Is(err, apperrors.ErrSearchFailed))
}

func TestRecommendationGenreFetchPrecedesEmbedding(t *testing.T) {
	f := newFixture()
	f.genres.err = errors.New("pg down")

	_, err := f.engine.AnswerQuery(context.Background(), 42, "recommendation")
	require.Error(t, err)
	assert.Empty(t, f.embeddings.calls)
}

func TestGeneralPathConcatenatesDeltas(t *testing.T) {
	f := newFixture()
	f.completer.stream = &fakeStream{deltas: []string{"Dune ", "was written ", "by Frank Herbert."}}

	turn, err := f.engine.AnswerQuery(context.Background(), 42, "who wrote Dune?")
	require.NoError(t, err)

	assert.Equal(t, entity.RouteGeneral, turn.Route)
	assert.Equal(t, "Dune was written by Frank Herbert.", turn.Response)
	assert.Nil(t, turn.Recommendations, "general route must not carry a recommendations key")
	assert.True(t, f.completer.stream.closed)

	// 检索侧协作方完全不被触发
	assert.Empty(t, f.users.calls)
	assert.Empty(t, f.embeddings.calls)
	assert.Zero(t, f.searcher.calls)

	require.NotNil(t, f.completer.req)
	assert.Equal(t, 550, f.completer.req.MaxTokens)
	assert.Contains(t, f.completer.req.System, "helpful assistant")
	assert.Equal(t, "who wrote Dune?", f.completer.req.Query)
}

func TestGeneralPathEmptyStream(t *testing.T) {
	f := newFixture()
	f.completer.stream = &fakeStream{}

	turn, err := f.engine.AnswerQuery(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.Equal(t, "", turn.Response)
	assert.Nil(t, turn.Recommendations)
}

func TestGeneralPathStartFailure(t *testing.T) {
	f := newFixture()
	f.completer.startErr = errors.New("provider 401")

	_, err := f.engine.AnswerQuery(context.Background(), 1, "hello")
	assert.True(t, errors.Is(err, apperrors.ErrCompletionFailed))
}

func TestGeneralPathMidStreamFailure(t *testing.T) {
	f := newFixture()
	f.completer.stream = &fakeStream{deltas: []string{"partial "}, err: errors.New("connection reset")}

	_, err := f.engine.AnswerQuery(context.Background(), 1, "hello")
	assert.True(t, errors.Is(err, apperrors.ErrCompletionFailed))
	assert.True(t, f.completer.stream.closed, "stream must be closed on failure")
}
