package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/money"
)

func TestService_Create(t *testing.T) {
	ownerID := uuid.New()

	type testCase struct {
		name      string
		params    account.CreateParams
		setupMock func(m *account.MockStore)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: account.CreateParams{
				Name:     "Cash",
				Balance:  decimal.NewFromInt(100),
				Currency: "USD",
			},
			setupMock: func(m *account.MockStore) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, acc *account.Account) error {
						acc.ID = uuid.New()
						acc.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "DuplicateName",
			params: account.CreateParams{
				Name:     "Cash",
				Currency: "USD",
			},
			setupMock: func(m *account.MockStore) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					Return(account.ErrNameTaken)
			},
			wantErr: account.ErrNameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := account.NewMockStore(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(store)
			}

			svc := account.NewService(store)
			got, err := svc.Create(context.Background(), ownerID, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, ownerID, got.OwnerID)
			assert.True(t, got.Balance.Equal(money.New(tt.params.Balance, tt.params.Currency)))
		})
	}
}

func TestService_Update(t *testing.T) {
	ownerID := uuid.New()
	accID := uuid.New()

	existing := func() *account.Account {
		return &account.Account{
			ID:      accID,
			OwnerID: ownerID,
			Name:    "Cash",
			Balance: money.New(decimal.NewFromInt(50), "USD"),
		}
	}

	t.Run("RenameOnly", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := account.NewMockStore(ctrl)
		store.EXPECT().GetAccount(gomock.Any(), ownerID, accID).Return(existing(), nil)
		store.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return(nil)

		name := "Wallet"

		got, err := account.NewService(store).Update(context.Background(), ownerID, accID, account.UpdateParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Wallet", got.Name)
		assert.True(t, got.Balance.Equal(money.New(decimal.NewFromInt(50), "USD")))
	})

	t.Run("CurrencyEditDoesNotConvertBalance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := account.NewMockStore(ctrl)
		store.EXPECT().GetAccount(gomock.Any(), ownerID, accID).Return(existing(), nil)
		store.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return(nil)

		cur := money.Currency("EUR")

		got, err := account.NewService(store).Update(context.Background(), ownerID, accID, account.UpdateParams{Currency: &cur})
		require.NoError(t, err)
		assert.Equal(t, money.Currency("EUR"), got.Balance.Currency)
		assert.Equal(t, "50", got.Balance.Amount.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		store := account.NewMockStore(ctrl)
		store.EXPECT().GetAccount(gomock.Any(), ownerID, accID).Return(nil, account.ErrNotFound)

		_, err := account.NewService(store).Update(context.Background(), ownerID, accID, account.UpdateParams{})
		assert.ErrorIs(t, err, account.ErrNotFound)
	})
}
