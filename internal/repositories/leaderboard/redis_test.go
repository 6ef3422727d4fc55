package leaderboard

import (
	"context"
	"testing"

	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
	ctx    context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) award(identity string, amount int) int {
	out, err := s.repo.Award(s.ctx, &AwardInput{Board: "numberbattle", Identity: identity, Amount: amount})
	s.Require().NoError(err)
	return out.Score
}

func (s *RedisRepositoryTestSuite) TestNewRedisValidation() {
	_, err := NewRedis(nil)
	s.Error(err)

	_, err = NewRedis(&Config{})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestAwardAccumulates() {
	s.Equal(10, s.award("alice", 10))
	s.Equal(13, s.award("alice", 3))

	out, err := s.repo.GetScore(s.ctx, &GetScoreInput{Board: "numberbattle", Identity: "alice"})
	s.Require().NoError(err)
	s.True(out.Found)
	s.Equal(13, out.Score)

	s.Equal("13", s.mr.HGet("leaderboard:numberbattle:scores", "alice"))
}

func (s *RedisRepositoryTestSuite) TestAwardRejectsNegative() {
	_, err := s.repo.Award(s.ctx, &AwardInput{Board: "numberbattle", Identity: "alice", Amount: -1})
	s.ErrorIs(err, models.ErrNegativeAward)
}

func (s *RedisRepositoryTestSuite) TestAwardZeroCreatesEntry() {
	s.Equal(0, s.award("alice", 0))

	out, err := s.repo.GetTop(s.ctx, &GetTopInput{Board: "numberbattle"})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 1)
	s.Equal("alice", out.Entries[0].Identity)
	s.Equal(0, out.Entries[0].Score)
}

func (s *RedisRepositoryTestSuite) TestGetScoreMissing() {
	out, err := s.repo.GetScore(s.ctx, &GetScoreInput{Board: "numberbattle", Identity: "nobody"})
	s.Require().NoError(err)
	s.False(out.Found)
	s.Equal(0, out.Score)
}

func (s *RedisRepositoryTestSuite) TestGetTopOrdersTiesByReachedFirst() {
	s.award("alice", 10)
	s.award("bob", 5)
	s.award("carol", 12)
	s.award("bob", 5)

	out, err := s.repo.GetTop(s.ctx, &GetTopInput{Board: "numberbattle", Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 2)

	s.Equal("carol", out.Entries[0].Identity)
	s.Equal(1, out.Entries[0].Rank)
	s.Equal("alice", out.Entries[1].Identity)
	s.Equal(10, out.Entries[1].Score)
	s.Equal(2, out.Entries[1].Rank)
}

func (s *RedisRepositoryTestSuite) TestBoardsAreIndependent() {
	s.award("alice", 10)
	_, err := s.repo.Award(s.ctx, &AwardInput{Board: "arena", Identity: "bob", Amount: 60})
	s.Require().NoError(err)

	out, err := s.repo.GetTop(s.ctx, &GetTopInput{Board: "arena"})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 1)
	s.Equal("bob", out.Entries[0].Identity)
}

func (s *RedisRepositoryTestSuite) TestReset() {
	s.award("alice", 10)

	s.Require().NoError(s.repo.Reset(s.ctx, &ResetInput{Board: "numberbattle"}))

	out, err := s.repo.GetTop(s.ctx, &GetTopInput{Board: "numberbattle"})
	s.Require().NoError(err)
	s.Empty(out.Entries)
	s.False(s.mr.Exists("leaderboard:numberbattle:scores"))
}
