package valkey

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/hybridex/internal/db"
)

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newStore(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := newStore(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f1": "v1"}},
		{Key: "k2", Fields: map[string]string{"f2": "v2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSupportsTextSearch(t *testing.T) {
	s := newStore(nil)
	if s.SupportsTextSearch(context.Background()) {
		t.Error("valkey store should not report text search support")
	}
}

func TestSearchBM25_Unsupported(t *testing.T) {
	s := newStore(nil)
	_, err := s.SearchBM25(context.Background(), &db.TextQuery{IndexName: "idx", Query: "q", TopK: 1})
	if !errors.Is(err, db.ErrTextSearchUnsupported) {
		t.Errorf("expected ErrTextSearchUnsupported, got %v", err)
	}
}

func TestCreateIndex_StripsTextFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	def := db.NewIndex("hybridex:idx:a").
		Prefix("hybridex:doc:a:").
		LanguageField("__lang").
		NoStopwords().
		Text("__content").
		Vector("__vector", "vector", db.VectorParams{Dim: 4, M: 16, EFConstruction: 200}).
		Numeric("created_at").
		MustBuild()

	s := newStore(c)
	if err := s.CreateIndex(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, banned := range []string{"TEXT", "LANGUAGE_FIELD", "STOPWORDS", "__content"} {
		if slices.Contains(got, banned) {
			t.Errorf("unexpected %q in %v", banned, got)
		}
	}
	if !slices.Contains(got, "VECTOR") || !slices.Contains(got, "NUMERIC") {
		t.Errorf("vector and numeric fields must survive: %v", got)
	}
	if !def.HasText() {
		t.Error("caller's definition must not be mutated")
	}
}

func TestCreateIndex_VectorOnlyPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	def := db.NewIndex("idx").
		Vector("__vector", "vector", db.VectorParams{Algorithm: db.VectorFlat, Dim: 4, BlockSize: 64}).
		MustBuild()
	want, err := def.Args()
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	c.EXPECT().
		Do(gomock.Any(), mock.Match(append([]string{"FT.CREATE"}, want...)...)).
		Return(mock.Result(mock.RedisString("OK")))

	if err := newStore(c).CreateIndex(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearchKNN_NoLimitClause(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("hybridex:doc:a:1"),
			mock.RedisArray(
				mock.RedisString("__vector_score"), mock.RedisString("0.25"),
				mock.RedisString("__content"), mock.RedisString("doc"),
			),
		)))

	s := newStore(c)
	res, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:    "hybridex:idx:a",
		Vector:       []float32{1, 0},
		K:            3,
		ReturnFields: []string{"__content", "__vector_score"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Contains(got, "LIMIT") {
		t.Errorf("LIMIT must not be sent: %v", got)
	}
	if len(res.Entries) != 1 || res.Entries[0].Score != 0.75 {
		t.Errorf("unexpected entries %+v", res.Entries)
	}
	if res.Entries[0].Fields["__content"] != "doc" {
		t.Errorf("fields = %v", res.Entries[0].Fields)
	}
}

func TestSearchKNN_IndexMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("Index with name 'hybridex:idx:x' not found")))

	s := newStore(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "hybridex:idx:x", Vector: []float32{1}, K: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchKNN_ServerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newStore(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{IndexName: "idx", Vector: []float32{1}, K: 1})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Errorf("expected db.Error, got %v", err)
	}
}
