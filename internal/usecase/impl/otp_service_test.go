package impl

import (
	"context"
	"testing"
	"time"

	"passwordless/internal/domain/entity"
	domainerrors "passwordless/internal/domain/errors"
	"passwordless/internal/domain/repository"
	"passwordless/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type otpServiceFixture struct {
	otps      *mockOtpRepo
	generator *mockOtpGenerator
	hasher    *mockCodeHasher
	sender    *mockOtpSender
	svc       usecase.OtpUsecase
}

func newOtpServiceFixture(t *testing.T) *otpServiceFixture {
	t.Helper()

	f := &otpServiceFixture{
		otps:      new(mockOtpRepo),
		generator: new(mockOtpGenerator),
		hasher:    new(mockCodeHasher),
		sender:    new(mockOtpSender),
	}
	f.svc = NewOtpService(OtpServiceParams{
		OtpRepo:   f.otps,
		Generator: f.generator,
		Hasher:    f.hasher,
		Sender:    f.sender,
		Logger:    testLogger(),
	})

	return f
}

func TestOtpService_IssueChallenge_StoresHashOnly(t *testing.T) {
	f := newOtpServiceFixture(t)

	f.otps.On("FindRecentByDestination", mock.Anything, "user@example.com").
		Return(nil, repository.ErrOtpChallengeNotFound)
	f.generator.On("Generate").Return("482913", nil)
	f.hasher.On("Hash", "482913").Return("hashed-code", nil)

	var stored *entity.OtpChallenge
	f.otps.On("Create", mock.Anything, mock.AnythingOfType("*entity.OtpChallenge")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entity.OtpChallenge)
		}).Return(nil)
	f.sender.On("Send", mock.Anything, "user@example.com", "482913").Return(nil)

	output, err := f.svc.IssueChallenge(context.Background(), usecase.IssueOtpInput{
		Destination: "user@example.com",
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, stored.SessionID, output.SessionID)
	require.Equal(t, "hashed-code", stored.CodeHash)
	require.NotContains(t, stored.CodeHash, "482913")
	require.Equal(t, 3, stored.MaxAttempts)
	require.False(t, stored.Used)
	require.True(t, stored.ExpiresAt.After(time.Now()))
	require.Equal(t, stored.ExpiresAt, output.ExpiresAt)
}

func TestOtpService_IssueChallenge_ResendThrottled(t *testing.T) {
	f := newOtpServiceFixture(t)

	f.otps.On("FindRecentByDestination", mock.Anything, "user@example.com").
		Return(&entity.OtpChallenge{
			Destination: "user@example.com",
			LastSentAt:  time.Now().Add(-10 * time.Second),
		}, nil)

	_, err := f.svc.IssueChallenge(context.Background(), usecase.IssueOtpInput{
		Destination: "user@example.com",
	})

	require.ErrorIs(t, err, domainerrors.ErrOtpResendThrottled)
	f.generator.AssertNotCalled(t, "Generate")
	f.otps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestOtpService_IssueChallenge_CooldownElapsed(t *testing.T) {
	f := newOtpServiceFixture(t)

	// A pending challenge exists but it was sent longer ago than the
	// cooldown window.
	f.otps.On("FindRecentByDestination", mock.Anything, "user@example.com").
		Return(&entity.OtpChallenge{
			Destination: "user@example.com",
			LastSentAt:  time.Now().Add(-2 * time.Minute),
			ExpiresAt:   time.Now().Add(3 * time.Minute),
		}, nil)
	f.generator.On("Generate").Return("482913", nil)
	f.hasher.On("Hash", "482913").Return("hashed-code", nil)
	f.otps.On("Create", mock.Anything, mock.AnythingOfType("*entity.OtpChallenge")).Return(nil)
	f.sender.On("Send", mock.Anything, "user@example.com", "482913").Return(nil)

	_, err := f.svc.IssueChallenge(context.Background(), usecase.IssueOtpInput{
		Destination: "user@example.com",
	})

	require.NoError(t, err)
}

func TestOtpService_IssueChallenge_SenderFailure(t *testing.T) {
	f := newOtpServiceFixture(t)

	f.otps.On("FindRecentByDestination", mock.Anything, "user@example.com").
		Return(nil, repository.ErrOtpChallengeNotFound)
	f.generator.On("Generate").Return("482913", nil)
	f.hasher.On("Hash", "482913").Return("hashed-code", nil)
	f.otps.On("Create", mock.Anything, mock.AnythingOfType("*entity.OtpChallenge")).Return(nil)
	f.sender.On("Send", mock.Anything, "user@example.com", "482913").
		Return(errors.New("gateway unavailable"))

	_, err := f.svc.IssueChallenge(context.Background(), usecase.IssueOtpInput{
		Destination: "user@example.com",
	})

	require.Error(t, err)
}

func TestOtpService_CleanupExpired(t *testing.T) {
	f := newOtpServiceFixture(t)

	var cutoff time.Time
	f.otps.On("DeleteExpiredBefore", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			cutoff = args.Get(1).(time.Time)
		}).Return(nil)

	require.NoError(t, f.svc.CleanupExpired(context.Background()))
	require.True(t, cutoff.Before(time.Now().Add(-23*time.Hour)))
}
