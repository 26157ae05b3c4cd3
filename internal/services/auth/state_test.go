package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/secrets/internal/dependencies/mocks"
	"github.com/mcoot/secrets/internal/model"
)

type StateSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	signer *StateSigner
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateSuite))
}

func (s *StateSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	signer, err := NewStateSigner([]byte("0123456789abcdef0123456789abcdef"), 0, s.clock, s.random)
	s.Require().NoError(err)
	s.signer = signer
}

func (s *StateSuite) TestRejectsShortKey() {
	_, err := NewStateSigner([]byte("short"), time.Minute, s.clock, s.random)
	s.Error(err)
}

func (s *StateSuite) TestDefaultTTL() {
	s.Equal(10*time.Minute, s.signer.TTL())
}

func (s *StateSuite) TestIssueAndVerify() {
	s.random.QueueString("nonce-1")

	state, nonce, err := s.signer.Issue(model.ProviderGoogle)
	s.Require().NoError(err)
	s.Equal("nonce-1", nonce)
	s.Equal(2, strings.Count(state, "."), "state is a compact JWT")

	s.NoError(s.signer.Verify(state, model.ProviderGoogle, "nonce-1"))
}

func (s *StateSuite) TestIssueFailsWithoutNonce() {
	_, _, err := s.signer.Issue(model.ProviderGoogle)
	s.Error(err)
}

func (s *StateSuite) TestVerifyRejectsWrongNonce() {
	s.random.QueueString("nonce-1")
	state, _, _ := s.signer.Issue(model.ProviderGoogle)

	s.ErrorIs(s.signer.Verify(state, model.ProviderGoogle, "nonce-2"), ErrInvalidState)
	s.ErrorIs(s.signer.Verify(state, model.ProviderGoogle, ""), ErrInvalidState)
}

func (s *StateSuite) TestVerifyRejectsOtherProvider() {
	s.random.QueueString("nonce-1")
	state, _, _ := s.signer.Issue(model.ProviderGoogle)

	s.ErrorIs(s.signer.Verify(state, model.ProviderFacebook, "nonce-1"), ErrInvalidState)
}

func (s *StateSuite) TestVerifyRejectsExpiredState() {
	s.random.QueueString("nonce-1")
	state, _, _ := s.signer.Issue(model.ProviderGoogle)

	s.clock.Advance(11 * time.Minute)

	s.ErrorIs(s.signer.Verify(state, model.ProviderGoogle, "nonce-1"), ErrInvalidState)
}

func (s *StateSuite) TestVerifyRejectsForeignKey() {
	other, err := NewStateSigner([]byte("ffffffffffffffffffffffffffffffff"), 0, s.clock, s.random)
	s.Require().NoError(err)

	s.random.QueueString("nonce-1")
	state, _, _ := other.Issue(model.ProviderGoogle)

	s.ErrorIs(s.signer.Verify(state, model.ProviderGoogle, "nonce-1"), ErrInvalidState)
}

func (s *StateSuite) TestVerifyRejectsGarbage() {
	s.ErrorIs(s.signer.Verify("not-a-jwt", model.ProviderGoogle, "nonce"), ErrInvalidState)
	s.ErrorIs(s.signer.Verify("", model.ProviderGoogle, "nonce"), ErrInvalidState)
}
