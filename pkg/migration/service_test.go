package migration

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/testsuite"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

type ServiceTestSuite struct {
	suite.Suite
	f       *fixture
	source  *mockSource
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
	s.source = new(mockSource)
	s.source.On("ObtainSigner", mock.Anything, "alice@example.com").Return(s.f.sender, nil)
	s.source.On("ObtainSigner", mock.Anything, mock.Anything).Return(nil, wallet.ErrAccountNotFound)
	s.source.On("ResolveAddress", mock.Anything, "alice@example.com").Return(s.f.sender.Address(), nil)

	registry, err := assets.NewRegistry(erc20A, nativeB)
	s.Require().NoError(err)

	s.service, err = NewService(&ServiceConfig{
		Registry:     registry,
		Source:       s.source,
		Evaluator:    NewEvaluator(registry, s.f.reader, s.source),
		Orchestrator: NewOrchestrator(registry, s.f.manager, s.f.executor),
	})
	s.Require().NoError(err)
}

func (s *ServiceTestSuite) TestNewServiceValidation() {
	_, err := NewService(&ServiceConfig{})
	s.Error(err)
}

func (s *ServiceTestSuite) TestMigrate() {
	sender := s.f.sender.Address()
	a, b := s.f.clients[chainA], s.f.clients[chainB]
	a.On("ERC20Balance", mock.Anything, tokenA, sender).Return(big.NewInt(10), nil)
	a.On("NonceAt", mock.Anything, sender).Return(uint64(1), nil)
	a.On("TransferERC20", mock.Anything, tokenA, recipient, big.NewInt(10)).Return(nil, nil)
	b.On("NativeBalance", mock.Anything, sender).Return(big.NewInt(0), nil)

	status, err := s.service.Status(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal([]assets.Asset{erc20A}, status.AssetsToMigrate)

	report, err := s.service.Migrate(s.ctx, "alice@example.com", recipient)
	s.Require().NoError(err)
	s.True(report.Completed())
	s.Equal([]uint64{1}, nonces(report.Transactions()))
	s.Equal(StatusSkipped, report.Outcomes[1].Status)

	run := s.service.RunState("alice@example.com")
	s.Equal(StateComplete, run.State)
	s.Same(report, run.Report)

	encoded, err := json.Marshal(run)
	s.Require().NoError(err)
	s.Contains(string(encoded), `"state":"complete"`)
	s.Contains(string(encoded), `"completed":true`)
}

func (s *ServiceTestSuite) TestMigrateNothingToDo() {
	sender := s.f.sender.Address()
	s.f.clients[chainA].On("ERC20Balance", mock.Anything, tokenA, sender).Return(big.NewInt(0), nil)
	s.f.clients[chainB].On("NativeBalance", mock.Anything, sender).Return(big.NewInt(0), nil)

	report, err := s.service.Migrate(s.ctx, "alice@example.com", recipient)
	s.Require().NoError(err)
	s.Empty(report.Transactions())
	s.Len(report.Outcomes, 2)
	s.f.clients[chainA].AssertNumberOfCalls(s.T(), "NonceAt", 0)
	s.Equal(StateComplete, s.service.RunState("alice@example.com").State)
}

func (s *ServiceTestSuite) TestMigrateUnknownIdentity() {
	_, err := s.service.Migrate(s.ctx, "ghost@example.com", recipient)
	s.ErrorIs(err, wallet.ErrAccountNotFound)
	s.Equal(StateIncomplete, s.service.RunState("ghost@example.com").State)
}

func (s *ServiceTestSuite) TestMigrateRejectsBadRecipient() {
	_, err := s.service.Migrate(s.ctx, "alice@example.com", common.Address{})
	s.ErrorIs(err, ErrMissingRecipient)

	_, err = s.service.Migrate(s.ctx, "alice@example.com", s.f.sender.Address())
	s.ErrorIs(err, ErrSameAccount)
	s.Equal(StateIncomplete, s.service.RunState("alice@example.com").State)
}

func (s *ServiceTestSuite) TestMigratePreCheckFailure() {
	s.f.clients[chainA].On("ERC20Balance", mock.Anything, tokenA, s.f.sender.Address()).Return(nil, errRPCDown)
	s.f.clients[chainB].On("NativeBalance", mock.Anything, s.f.sender.Address()).Return(big.NewInt(1), nil)

	_, err := s.service.Migrate(s.ctx, "alice@example.com", recipient)
	s.ErrorIs(err, errRPCDown)
	s.Equal(StateIncomplete, s.service.RunState("alice@example.com").State)
}

func (s *ServiceTestSuite) TestMigrateOutlivesCancelledCaller() {
	registry, err := assets.NewRegistry(erc721A, erc20A)
	s.Require().NoError(err)
	service, err := NewService(&ServiceConfig{
		Registry:     registry,
		Source:       s.source,
		Evaluator:    NewEvaluator(registry, s.f.reader, s.source),
		Orchestrator: NewOrchestrator(registry, s.f.manager, s.f.executor),
	})
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sender := s.f.sender.Address()
	a := s.f.clients[chainA]
	a.On("OwnedERC721", mock.Anything, nftA, sender).Return([]*big.Int{big.NewInt(1), big.NewInt(2)}, nil)
	a.On("ERC20Balance", mock.Anything, tokenA, sender).Return(big.NewInt(10), nil)
	a.On("NonceAt", mock.Anything, sender).Return(uint64(4), nil)

	var transferCtxErrs []error
	record := func(args mock.Arguments) {
		opts := args.Get(0).(*bind.TransactOpts)
		transferCtxErrs = append(transferCtxErrs, opts.Context.Err())
	}
	// the caller goes away right after the first transfer is submitted
	a.On("TransferERC721", testsuite.NonceOf(4), nftA, sender, recipient, big.NewInt(1)).
		Run(func(args mock.Arguments) {
			record(args)
			cancel()
		}).Return(nil, nil).Once()
	a.On("TransferERC721", testsuite.NonceOf(5), nftA, sender, recipient, big.NewInt(2)).
		Run(record).Return(nil, nil).Once()
	a.On("TransferERC20", testsuite.NonceOf(6), tokenA, recipient, big.NewInt(10)).
		Run(record).Return(nil, nil).Once()

	report, err := service.Migrate(ctx, "alice@example.com", recipient)
	s.Require().NoError(err)
	s.Require().ErrorIs(ctx.Err(), context.Canceled)

	s.True(report.Completed())
	s.Equal([]uint64{4, 5, 6}, nonces(report.Transactions()))
	s.Equal([]error{nil, nil, nil}, transferCtxErrs)
	a.AssertExpectations(s.T())
}
