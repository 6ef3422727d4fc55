package router

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/KirkDiggler/crowdplay/internal/dice/mocks"
	"github.com/KirkDiggler/crowdplay/internal/metrics"
	"github.com/KirkDiggler/crowdplay/internal/models"
	"github.com/KirkDiggler/crowdplay/internal/scheduler"
	"github.com/KirkDiggler/crowdplay/internal/services/adventure"
	"github.com/KirkDiggler/crowdplay/internal/services/messaging"
	"github.com/KirkDiggler/crowdplay/internal/services/pet"
	"github.com/KirkDiggler/crowdplay/internal/services/roster"
	"github.com/KirkDiggler/crowdplay/internal/services/session"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type fakeMode struct {
	name     string
	commands []string
	handled  []string
	err      error
}

func (f *fakeMode) Name() string       { return f.name }
func (f *fakeMode) Title() string      { return strings.ToUpper(f.name) }
func (f *fakeMode) Commands() []string { return f.commands }
func (f *fakeMode) Status(ctx context.Context) string {
	return f.name + " status"
}
func (f *fakeMode) Instructions() string { return f.name + " instructions" }

func (f *fakeMode) Handle(ctx context.Context, cmd *models.Command) (string, error) {
	f.handled = append(f.handled, cmd.Name)
	if f.err != nil {
		return "", f.err
	}
	return f.name + " handled " + cmd.Name, nil
}

type RouterTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockRoller *mocks.MockRoller
	messaging  messaging.Service
	alpha      *fakeMode
	beta       *fakeMode
	router     *Service
	ctx        context.Context
}

func (s *RouterTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRoller = mocks.NewMockRoller(s.ctrl)
	s.ctx = context.Background()

	msgs, err := messaging.NewService(&messaging.ServiceConfig{DiceRoller: s.mockRoller})
	s.Require().NoError(err)
	s.messaging = msgs

	s.alpha = &fakeMode{name: "alpha", commands: []string{"alpha", "poke"}}
	s.beta = &fakeMode{name: "beta", commands: []string{"beta", "prod"}}

	router, err := New(&Config{
		Modes:     []Mode{s.alpha, s.beta},
		Messaging: msgs,
		Metrics:   metrics.New(),
	})
	s.Require().NoError(err)
	s.router = router
}

func (s *RouterTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) handle(name string, args ...string) string {
	return s.router.Handle(s.ctx, &models.Command{Name: name, Args: args, Identity: "alice"})
}

func (s *RouterTestSuite) TestDuplicateCommandIsRejected() {
	_, err := New(&Config{
		Modes:     []Mode{s.alpha, &fakeMode{name: "gamma", commands: []string{"gamma", "poke"}}},
		Messaging: s.messaging,
	})
	s.ErrorContains(err, `command "poke" of mode gamma is already registered by alpha`)

	_, err = New(&Config{
		Modes:     []Mode{&fakeMode{name: "delta", commands: []string{"delta", "status"}}},
		Messaging: s.messaging,
	})
	s.ErrorContains(err, "already registered by the router")

	_, err = New(&Config{
		Modes:     []Mode{&fakeMode{name: "omega", commands: []string{"zap"}}},
		Messaging: s.messaging,
	})
	s.ErrorContains(err, "must own its selector")
}

func (s *RouterTestSuite) TestUnknownCommand() {
	s.Equal("❓ Unknown command 'dance'. Type !help for available commands.", s.handle("dance"))
}

func (s *RouterTestSuite) TestSelectorStartsMode() {
	reply := s.handle("alpha")

	s.Equal("🎮 Starting ALPHA! alpha instructions\nalpha handled alpha", reply)
	s.Equal(s.alpha, s.router.Active())
	s.Equal([]string{"alpha"}, s.alpha.handled)

	// selecting the active mode again does not repeat the header
	s.Equal("alpha handled alpha", s.handle("alpha"))
}

func (s *RouterTestSuite) TestSwitchingChangesActiveMode() {
	s.handle("alpha")
	reply := s.handle("beta")

	s.Equal("🎮 Starting BETA! beta instructions\nbeta handled beta", reply)
	s.Equal(s.beta, s.router.Active())
}

func (s *RouterTestSuite) TestCommandsRouteToOwner() {
	s.handle("alpha")

	s.Equal("beta handled prod", s.handle("prod"))
	s.Equal(s.alpha, s.router.Active())
}

func (s *RouterTestSuite) TestErrorsAreRendered() {
	s.beta.err = models.Refuse(models.ErrInvalidState, "Not now!")
	s.Equal("@alice Not now!", s.handle("prod"))
}

func (s *RouterTestSuite) TestErrorsAddressDisplayName() {
	s.beta.err = models.Refuse(models.ErrInvalidState, "Not now!")

	reply := s.router.Handle(s.ctx, &models.Command{Name: "prod", Identity: "111", DisplayName: "Alex"})
	s.Equal("@Alex Not now!", reply)
}

func (s *RouterTestSuite) TestGlobalCommands() {
	s.Equal("🎮 Interactive Games Help:\n"+
		"📚 Available Games: !alpha !beta\n"+
		"🔧 General: !help !game !status\n"+
		"💡 Start any game to see specific commands!", s.handle("help"))

	s.Equal("🎮 No active game. Available: !alpha !beta", s.handle("game"))
	s.Equal("📊 Game System Status:\nalpha status\nbeta status", s.handle("status"))

	s.handle("beta")
	s.Equal("🎯 Currently playing: BETA", s.handle("game"))
	s.Equal("📊 Game System Status:\nalpha status\nbeta status\n\n🎯 Active: BETA", s.handle("status"))
}

func (s *RouterTestSuite) TestSelectingPetKeepsAdventureVoting() {
	manual := scheduler.NewManual(time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC))
	var emitted []string
	sink := session.SinkFunc(func(msg string) { emitted = append(emitted, msg) })
	names := roster.New()

	s.mockRoller.EXPECT().Roll(gomock.Any()).Return(1).AnyTimes()

	adv, err := adventure.New(&adventure.Config{Scheduler: manual, Clock: manual, Sink: sink, Roster: names})
	s.Require().NoError(err)
	vpet, err := pet.New(&pet.Config{Scheduler: manual, Clock: manual, DiceRoller: s.mockRoller, Sink: sink, Roster: names})
	s.Require().NoError(err)

	router, err := New(&Config{Modes: []Mode{adv, vpet}, Messaging: s.messaging, Roster: names})
	s.Require().NoError(err)

	reply := router.Handle(s.ctx, &models.Command{Name: "adventure", Identity: "111", DisplayName: "Alex"})
	s.Contains(reply, "🎮 Starting Adventure Quest!")
	s.Contains(reply, "📖 Scene 1")

	reply = router.Handle(s.ctx, &models.Command{Name: "choice", Args: []string{"A"}, Identity: "111", DisplayName: "Alex"})
	s.Equal("@Alex voted A! Total votes: 1", reply)

	reply = router.Handle(s.ctx, &models.Command{Name: "pet", Args: []string{"goodboy"}, Identity: "222", DisplayName: "Alex"})
	s.Contains(reply, "🎮 Starting Virtual Pet Sanctuary!")
	s.Contains(reply, "@Alex gently pets Twitch!")

	s.Equal(session.StatusAwaitingVotes, adv.Session().Status())

	// a second participant sharing the display name still gets a ballot
	reply = router.Handle(s.ctx, &models.Command{Name: "choice", Args: []string{"B"}, Identity: "222", DisplayName: "Alex"})
	s.Equal("@Alex voted B! Total votes: 2", reply)

	manual.Advance(30 * time.Second)
	s.Require().NotEmpty(emitted)
	s.Contains(emitted[0], "🎯 Voting Results: A wins! (A:1 B:1 C:0)")
}
