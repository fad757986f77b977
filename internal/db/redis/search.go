package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridex/internal/db"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Entry scores are cosine similarity, max(0, 1 - distance).
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	args := []string{q.IndexName, fmt.Sprintf("*=>[KNN %d @vector $BLOB]", q.K)}
	args = appendReturn(args, q.ReturnFields)
	if s.knnLimit {
		args = append(args, "LIMIT", "0", strconv.Itoa(q.K))
	}
	args = append(args, "PARAMS", "2", "BLOB", rueidis.BinaryString(db.EncodeVector(q.Vector)), "DIALECT", "2")

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}

	res, err := parseSearchReply(raw, false)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		e := &res.Entries[i]
		if dist, err := strconv.ParseFloat(e.Fields[db.VectorScoreField], 64); err == nil {
			e.Score = max(0, 1-dist)
		}
		delete(e.Fields, db.VectorScoreField)
	}
	return res, nil
}

// SearchBM25 runs a BM25 text search via FT.SEARCH. All query terms must match.
func (s *Store) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	terms := lexicalTerms(q.Query)
	if len(terms) == 0 {
		return &db.SearchResult{}, nil
	}

	args := []string{q.IndexName, "@__content:(" + strings.Join(terms, " ") + ")"}
	args = appendReturn(args, q.ReturnFields)
	switch {
	case q.Verbatim:
		args = append(args, "VERBATIM")
	case q.Language != "":
		args = append(args, "LANGUAGE", q.Language)
	}
	args = append(args,
		"WITHSCORES",
		"SCORER", "BM25",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}
	return parseSearchReply(raw, true)
}

func appendReturn(args, fields []string) []string {
	if len(fields) == 0 {
		return args
	}
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	return append(args, fields...)
}

// searchErr maps the missing-index replies of Redis and valkey-search to db.ErrIndexNotFound.
func searchErr(err error) error {
	if isRedisErr(err, "no such index") || isRedisErr(err, errUnknownIndex) ||
		(isRedisErr(err, "index") && isRedisErr(err, "not found")) {
		return db.ErrIndexNotFound
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

// parseSearchReply decodes a RESP2 FT.SEARCH reply:
//
//	[total, key, fields, key, fields, ...]          plain
//	[total, key, score, fields, key, score, ...]    WITHSCORES
//
// Malformed entries are skipped.
func parseSearchReply(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse total: %w", err)}
	}

	stride := 2
	if withScores {
		stride = 3
	}
	res := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, 0, (len(raw)-1)/stride)}
	for i := 1; i+stride-1 < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entry := db.SearchEntry{Key: key}
		if withScores {
			scoreStr, err := raw[i+1].ToString()
			if err != nil {
				continue
			}
			if entry.Score, err = strconv.ParseFloat(scoreStr, 64); err != nil {
				continue
			}
		}
		fields, err := raw[i+stride-1].ToArray()
		if err != nil {
			continue
		}
		entry.Fields = fieldPairs(fields)
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func fieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		if value, err := fields[j+1].ToString(); err == nil {
			m[name] = value
		}
	}
	return m
}

// lexicalTerms splits a free-text query into letter/digit runs, matching how
// TEXT fields are tokenized at index time. Query syntax characters never reach the server.
func lexicalTerms(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
