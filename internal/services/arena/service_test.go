package arena

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/dice/mocks"
	"github.com/KirkDiggler/crowdplay/internal/models"
	repo "github.com/KirkDiggler/crowdplay/internal/repositories/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/leaderboard"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ArenaServiceTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockRoller *mocks.MockRoller
	manual     *scheduler.Manual
	board      *leaderboard.Service
	names      *roster.Roster
	emitted    []string
	service    *Service
	ctx        context.Context
}

func (s *ArenaServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRoller = mocks.NewMockRoller(s.ctrl)
	s.manual = scheduler.NewManual(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC))
	s.emitted = nil
	s.ctx = context.Background()
	s.names = roster.New()

	board, err := leaderboard.New(&leaderboard.Config{Board: Mode, Repository: repo.NewMemory()})
	s.Require().NoError(err)
	s.board = board

	msgs, err := messaging.NewService(&messaging.ServiceConfig{DiceRoller: s.mockRoller})
	s.Require().NoError(err)

	svc, err := New(&Config{
		Scheduler:   s.manual,
		Clock:       s.manual,
		Sink:        session.SinkFunc(func(msg string) { s.emitted = append(s.emitted, msg) }),
		DiceRoller:  s.mockRoller,
		Leaderboard: board,
		Messaging:   msgs,
		Roster:      s.names,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *ArenaServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestArenaServiceSuite(t *testing.T) {
	suite.Run(t, new(ArenaServiceTestSuite))
}

func (s *ArenaServiceTestSuite) handle(identity, name string) (string, error) {
	return s.service.Handle(s.ctx, &models.Command{Name: name, Identity: identity})
}

// start opens a battle against the enemy at roster index
func (s *ArenaServiceTestSuite) start(index int) string {
	s.mockRoller.EXPECT().Roll(len(enemies)).Return(index + 1)
	reply, err := s.handle("host", "arena")
	s.Require().NoError(err)
	return reply
}

func (s *ArenaServiceTestSuite) TestStartBattle() {
	reply := s.start(1)

	s.Contains(reply, "⚔️ Arena Combat Round 1!")
	s.Contains(reply, "⚔️ Heroes: 100/100 HP, 50/50 MP")
	s.Contains(reply, "🐉 Fire Dragon: 120 HP")
	s.Contains(reply, "🗳️ Vote for action: !attack !defend !magic !special (20 seconds)")
	s.Equal(session.StatusAwaitingVotes, s.service.Session().Status())

	_, err := s.handle("host", "arena")
	s.ErrorIs(err, models.ErrInvalidState)
}

func (s *ArenaServiceTestSuite) TestVoteWithoutBattle() {
	_, err := s.handle("alice", "attack")
	s.ErrorIs(err, models.ErrWindowClosed)
	s.Equal("⚔️ No active battle. Type !arena to start one!", s.service.BattleStatus())
}

func (s *ArenaServiceTestSuite) TestDuplicateVote() {
	s.start(0)

	reply, err := s.handle("alice", "magic")
	s.Require().NoError(err)
	s.Equal("@alice voted for magic! (1 votes)", reply)

	_, err = s.handle("alice", "attack")
	s.ErrorIs(err, models.ErrDuplicateVote)

	s.Equal("⚔️ Current Battle Warriors:\n🗡️ alice (voted magic)", s.service.Warriors())
}

func (s *ArenaServiceTestSuite) TestSharedDisplayNameVotesSeparately() {
	s.mockRoller.EXPECT().Roll(4).Return(1).AnyTimes()
	s.names.Remember("111", "Alex")
	s.names.Remember("222", "Alex")
	s.start(0)

	reply, err := s.handle("111", "attack")
	s.Require().NoError(err)
	s.Equal("@Alex voted for attack! (1 votes)", reply)

	reply, err = s.handle("222", "defend")
	s.Require().NoError(err)
	s.Equal("@Alex voted for defend! (1 votes)", reply)

	s.Equal("⚔️ Current Battle Warriors:\n🗡️ Alex (voted attack)\n🗡️ Alex (voted defend)", s.service.Warriors())

	_, err = s.board.Award(s.ctx, "222", 70)
	s.Require().NoError(err)

	reply, err = s.handle("111", "rank")
	s.Require().NoError(err)
	s.Contains(reply, "🥇 Alex: 70 EXP")
}

func (s *ArenaServiceTestSuite) TestHeroFallsAtZeroHP() {
	s.start(4) // Stone Giant, power 15
	s.service.battle.Hero.HP.Set(10)

	_, err := s.handle("alice", "magic")
	s.Require().NoError(err)

	gomock.InOrder(
		s.mockRoller.EXPECT().Roll(20).Return(1), // magic 30
		s.mockRoller.EXPECT().Roll(3).Return(1),  // enemy attacks
		s.mockRoller.EXPECT().Roll(10).Return(1), // for 15
	)
	s.manual.Advance(20 * time.Second)

	s.Require().Len(s.emitted, 1)
	s.Contains(s.emitted[0], "✨ Heroes cast magic for 30 damage! (-20 mana)")
	s.Contains(s.emitted[0], "🗿 Stone Giant attacks for 15 damage!")
	s.Contains(s.emitted[0], "💀 DEFEAT! The heroes have fallen to Stone Giant...")
	s.Equal(session.StatusIdle, s.service.Session().Status())
	s.Nil(s.service.Battle())
	s.Equal(0, s.manual.Pending())
}

func (s *ArenaServiceTestSuite) TestVictoryAwardsFinalTurnParticipants() {
	s.start(0) // Shadow Assassin
	s.service.battle.Enemy.HP.Set(20)

	for identity, action := range map[string]string{"alice": "attack", "bob": "attack", "carol": "magic"} {
		_, err := s.handle(identity, action)
		s.Require().NoError(err)
	}

	gomock.InOrder(
		s.mockRoller.EXPECT().Roll(15).Return(1),  // attack 20
		s.mockRoller.EXPECT().Roll(30).Return(10), // 59 EXP
	)
	s.manual.Advance(20 * time.Second)

	s.Require().Len(s.emitted, 1)
	s.Contains(s.emitted[0], "🗳️ Chosen Action: attack (2 votes)")
	s.Contains(s.emitted[0], "⚔️ Heroes attack for 20 damage!")
	s.Contains(s.emitted[0], "🥷 Shadow Assassin collapses!")
	s.Contains(s.emitted[0], "🎉 VICTORY! Shadow Assassin defeated!")
	s.Contains(s.emitted[0], "⭐ Everyone gains 59 experience!")

	for _, identity := range []string{"alice", "bob", "carol"} {
		score, err := s.board.Score(s.ctx, identity)
		s.Require().NoError(err)
		s.Equal(59, score)
	}
	s.Equal("⚔️ Arena Combat: Round 1, Active: false, Warriors: 3", s.service.Status(s.ctx))
}

func (s *ArenaServiceTestSuite) TestTurnContinuesAfterBreather() {
	s.start(2) // Ice Golem, power 20

	_, err := s.handle("alice", "defend")
	s.Require().NoError(err)

	gomock.InOrder(
		s.mockRoller.EXPECT().Roll(10).Return(6), // heal 10
		s.mockRoller.EXPECT().Roll(3).Return(3),  // special ability
	)
	s.manual.Advance(20 * time.Second)

	s.Require().Len(s.emitted, 1)
	s.Contains(s.emitted[0], "🛡️ Heroes defend (+15 shield, +10 HP)")
	s.Contains(s.emitted[0], "❄️ Ice Golem uses Ice Shard for 25 damage!")
	s.Contains(s.emitted[0], "⚔️ Heroes: 75/100 HP, 50/50 MP, 10 shield")
	s.Equal(session.StatusResolving, s.service.Session().Status())
	s.Equal(2, s.service.Battle().Turn)

	_, err = s.handle("alice", "attack")
	s.ErrorIs(err, models.ErrWindowClosed)

	s.manual.Advance(3 * time.Second)
	s.Require().Len(s.emitted, 2)
	s.Equal("🗳️ Vote for action: !attack !defend !magic !special (20 seconds)", s.emitted[1])

	_, err = s.handle("alice", "attack")
	s.Require().NoError(err)
}

func (s *ArenaServiceTestSuite) TestNoVotesFizzles() {
	s.start(3)

	s.manual.Advance(20 * time.Second)

	s.Equal([]string{"😴 No warriors answered the call! The battle fizzles out. Type !arena to try again!"}, s.emitted)
	s.Nil(s.service.Battle())

	s.start(5)
	s.Equal("Void Demon", s.service.Battle().Enemy.Name)
}

func (s *ArenaServiceTestSuite) TestRankings() {
	s.mockRoller.EXPECT().Roll(4).Return(1).AnyTimes()

	reply, err := s.handle("alice", "rank")
	s.Require().NoError(err)
	s.Equal("🏆 Arena Rankings:\nNo rankings yet! Fight in the arena to earn experience!", reply)

	_, err = s.board.Award(s.ctx, "carol", 70)
	s.Require().NoError(err)

	reply, err = s.handle("alice", "rank")
	s.Require().NoError(err)
	s.Contains(reply, "🥇 carol: 70 EXP")
}

func (s *ArenaServiceTestSuite) TestSpecialWithoutManaFallsBack() {
	battle := &models.Battle{Hero: newHero(), Enemy: &models.Enemy{HP: models.NewStat(50, 0, 50)}}
	battle.Hero.Mana.Set(10)

	s.mockRoller.EXPECT().Roll(3).Return(1) // Meteor Strike costs 30

	text := heroTurn(s.mockRoller, battle, ActionSpecial)
	s.Equal("💥 Not enough mana for special! Basic attack for 15 damage", text)
	s.Equal(35, battle.Enemy.HP.Value)
	s.Equal(15, battle.Hero.Mana.Value)
}

func (s *ArenaServiceTestSuite) TestPowerAttackRespectsShield() {
	enemy := enemies[1] // Fire Dragon, power 30
	battle := &models.Battle{Hero: newHero(), Enemy: &enemy}
	battle.Hero.Shield = 15

	gomock.InOrder(
		s.mockRoller.EXPECT().Roll(3).Return(2),
		s.mockRoller.EXPECT().Roll(15).Return(1),
	)

	text := enemyTurn(s.mockRoller, battle)
	s.Equal("🐉 Fire Dragon uses a powerful attack for 30 damage!", text)
	s.Equal(70, battle.Hero.HP.Value)
	s.Equal(10, battle.Hero.Shield)
	s.Equal(120, enemies[1].HP.Value)
}
