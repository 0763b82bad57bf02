package operation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/category"
	"github.com/MrJamesThe3rd/expenso/internal/money"
	"github.com/MrJamesThe3rd/expenso/internal/operation"
)

// fakeRepo is an in-memory Repository whose transactions work on copies and
// publish them on Commit, so a failed request observably leaves the committed
// state untouched.
type fakeRepo struct {
	accounts   map[uuid.UUID]*account.Account
	categories map[uuid.UUID]*category.Category
	operations map[uuid.UUID]*operation.Operation
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts:   make(map[uuid.UUID]*account.Account),
		categories: make(map[uuid.UUID]*category.Category),
		operations: make(map[uuid.UUID]*operation.Operation),
	}
}

func (r *fakeRepo) addAccount(ownerID uuid.UUID, cur money.Currency, balance string) uuid.UUID {
	id := uuid.New()
	r.accounts[id] = &account.Account{
		ID:      id,
		OwnerID: ownerID,
		Name:    id.String()[:8],
		Balance: money.New(decimal.RequireFromString(balance), cur),
	}

	return id
}

func (r *fakeRepo) addCategory(kind category.Kind) uuid.UUID {
	id := uuid.New()
	r.categories[id] = &category.Category{ID: id, Name: id.String()[:8], Kind: kind, IsDefault: true}

	return id
}

func (r *fakeRepo) balance(t *testing.T, id uuid.UUID) string {
	t.Helper()

	acc, ok := r.accounts[id]
	require.True(t, ok, "account %s not found", id)

	return acc.Balance.Amount.String()
}

func cloneAccount(a *account.Account) *account.Account {
	c := *a
	return &c
}

func cloneOperation(o *operation.Operation) *operation.Operation {
	c := *o

	if o.FromAccountID != nil {
		id := *o.FromAccountID
		c.FromAccountID = &id
	}

	if o.ToAccountID != nil {
		id := *o.ToAccountID
		c.ToAccountID = &id
	}

	if o.CategoryID != nil {
		id := *o.CategoryID
		c.CategoryID = &id
	}

	if o.Conversion != nil {
		conv := *o.Conversion
		c.Conversion = &conv
	}

	return &c
}

func (r *fakeRepo) Begin(_ context.Context) (operation.Tx, error) {
	tx := &fakeTx{
		repo:       r,
		accounts:   make(map[uuid.UUID]*account.Account, len(r.accounts)),
		operations: make(map[uuid.UUID]*operation.Operation, len(r.operations)),
	}

	for id, acc := range r.accounts {
		tx.accounts[id] = cloneAccount(acc)
	}

	for id, op := range r.operations {
		tx.operations[id] = cloneOperation(op)
	}

	return tx, nil
}

func (r *fakeRepo) GetOperation(_ context.Context, ownerID, id uuid.UUID, kind operation.Kind) (*operation.Operation, error) {
	op, ok := r.operations[id]
	if !ok || op.OwnerID != ownerID || op.Kind != kind {
		return nil, operation.ErrNotFound
	}

	return cloneOperation(op), nil
}

func (r *fakeRepo) ListOperations(_ context.Context, ownerID uuid.UUID, kind operation.Kind, _ operation.ListFilter) ([]*operation.Operation, error) {
	var ops []*operation.Operation

	for _, op := range r.operations {
		if op.OwnerID == ownerID && op.Kind == kind {
			ops = append(ops, cloneOperation(op))
		}
	}

	return ops, nil
}

type fakeTx struct {
	repo       *fakeRepo
	accounts   map[uuid.UUID]*account.Account
	operations map[uuid.UUID]*operation.Operation
}

func (t *fakeTx) GetAccountForUpdate(_ context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	acc, ok := t.accounts[id]
	if !ok || acc.OwnerID != ownerID {
		return nil, account.ErrNotFound
	}

	return acc, nil
}

func (t *fakeTx) CategoryExists(_ context.Context, ownerID, id uuid.UUID, kind category.Kind) (bool, error) {
	c, ok := t.repo.categories[id]
	if !ok || c.Kind != kind {
		return false, nil
	}

	return c.IsDefault || (c.OwnerID != nil && *c.OwnerID == ownerID), nil
}

func (t *fakeTx) GetOperationForUpdate(_ context.Context, ownerID, id uuid.UUID, kind operation.Kind) (*operation.Operation, error) {
	op, ok := t.operations[id]
	if !ok || op.OwnerID != ownerID || op.Kind != kind {
		return nil, operation.ErrNotFound
	}

	return cloneOperation(op), nil
}

func (t *fakeTx) ApplyDelta(_ context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	acc, ok := t.accounts[accountID]
	if !ok {
		return account.ErrNotFound
	}

	acc.Balance.Amount = acc.Balance.Amount.Add(delta)

	return nil
}

func (t *fakeTx) InsertOperation(_ context.Context, op *operation.Operation) error {
	op.ID = uuid.New()
	op.CreatedAt = time.Now()
	t.operations[op.ID] = cloneOperation(op)

	return nil
}

func (t *fakeTx) UpdateOperation(_ context.Context, op *operation.Operation) error {
	t.operations[op.ID] = cloneOperation(op)

	return nil
}

func (t *fakeTx) DeleteOperation(_ context.Context, id uuid.UUID) error {
	delete(t.operations, id)

	return nil
}

func (t *fakeTx) Commit() error {
	t.repo.accounts = t.accounts
	t.repo.operations = t.operations

	return nil
}

func (t *fakeTx) Rollback() error { return nil }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestService_CreateExpense(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "USD", "100")
	catID := repo.addCategory(category.KindExpense)

	svc := operation.NewService(repo)

	op, err := svc.CreateExpense(ctx, ownerID, operation.CreateParams{
		AccountID:  accID,
		CategoryID: catID,
		Amount:     dec("50"),
		Note:       "groceries",
	})
	require.NoError(t, err)

	assert.Equal(t, "50", repo.balance(t, accID))
	assert.Equal(t, operation.KindExpense, op.Kind)
	assert.Equal(t, money.Currency("USD"), op.Amount.Currency)
	assert.Equal(t, accID, *op.FromAccountID)
	assert.Equal(t, catID, *op.CategoryID)
	assert.Nil(t, op.ToAccountID)
	assert.NotEmpty(t, op.ID)

	persisted, err := repo.GetOperation(ctx, ownerID, op.ID, operation.KindExpense)
	require.NoError(t, err)
	assert.True(t, persisted.Amount.Equal(op.Amount))
}

func TestService_CreateIncome(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "EUR", "10")
	catID := repo.addCategory(category.KindIncome)

	svc := operation.NewService(repo)

	op, err := svc.CreateIncome(ctx, ownerID, operation.CreateParams{
		AccountID:  accID,
		CategoryID: catID,
		Amount:     dec("25.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "35.5", repo.balance(t, accID))
	assert.Equal(t, accID, *op.ToAccountID)
	assert.Nil(t, op.FromAccountID)
}

func TestService_Create_Failures(t *testing.T) {
	ownerID := uuid.New()

	type testCase struct {
		name    string
		params  func(repo *fakeRepo, accID, catID uuid.UUID) operation.CreateParams
		wantErr error
	}

	tests := []testCase{
		{
			name: "AccountMissing",
			params: func(_ *fakeRepo, _, catID uuid.UUID) operation.CreateParams {
				return operation.CreateParams{AccountID: uuid.New(), CategoryID: catID, Amount: dec("10")}
			},
			wantErr: operation.ErrAccountNotFound,
		},
		{
			name: "AccountOwnedByAnotherUser",
			params: func(repo *fakeRepo, _, catID uuid.UUID) operation.CreateParams {
				otherID := repo.addAccount(uuid.New(), "USD", "0")
				return operation.CreateParams{AccountID: otherID, CategoryID: catID, Amount: dec("10")}
			},
			wantErr: operation.ErrAccountNotFound,
		},
		{
			name: "CategoryMissing",
			params: func(_ *fakeRepo, accID, _ uuid.UUID) operation.CreateParams {
				return operation.CreateParams{AccountID: accID, CategoryID: uuid.New(), Amount: dec("10")}
			},
			wantErr: operation.ErrCategoryNotFound,
		},
		{
			name: "WrongCategoryKind",
			params: func(repo *fakeRepo, accID, _ uuid.UUID) operation.CreateParams {
				incomeCat := repo.addCategory(category.KindIncome)
				return operation.CreateParams{AccountID: accID, CategoryID: incomeCat, Amount: dec("10")}
			},
			wantErr: operation.ErrCategoryNotFound,
		},
		{
			name: "ZeroAmount",
			params: func(_ *fakeRepo, accID, catID uuid.UUID) operation.CreateParams {
				return operation.CreateParams{AccountID: accID, CategoryID: catID, Amount: decimal.Zero}
			},
			wantErr: operation.ErrInvalidAmount,
		},
		{
			name: "NegativeAmount",
			params: func(_ *fakeRepo, accID, catID uuid.UUID) operation.CreateParams {
				return operation.CreateParams{AccountID: accID, CategoryID: catID, Amount: dec("-5")}
			},
			wantErr: operation.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			accID := repo.addAccount(ownerID, "USD", "100")
			catID := repo.addCategory(category.KindExpense)

			svc := operation.NewService(repo)

			_, err := svc.CreateExpense(context.Background(), ownerID, tt.params(repo, accID, catID))
			assert.ErrorIs(t, err, tt.wantErr)

			// Nothing was persisted and no balance moved.
			assert.Equal(t, "100", repo.balance(t, accID))
			assert.Empty(t, repo.operations)
		})
	}
}

func TestService_CreateTransfer_CrossCurrency(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "200")
	toID := repo.addAccount(ownerID, "EUR", "0")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("100"),
		ExchangeRate:  decPtr("0.9"),
	})
	require.NoError(t, err)

	assert.Equal(t, "100", repo.balance(t, fromID))
	assert.Equal(t, "90", repo.balance(t, toID))

	require.NotNil(t, op.Conversion)
	assert.Equal(t, "90", op.Conversion.Amount.Amount.String())
	assert.Equal(t, money.Currency("EUR"), op.Conversion.Amount.Currency)
	assert.Equal(t, "0.9", op.Conversion.Rate.String())
	assert.Equal(t, money.Currency("USD"), op.Amount.Currency)
}

func TestService_CreateTransfer_SameCurrency(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "200")
	toID := repo.addAccount(ownerID, "USD", "5")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("40"),
	})
	require.NoError(t, err)

	assert.Equal(t, "160", repo.balance(t, fromID))
	assert.Equal(t, "45", repo.balance(t, toID))

	// No conversion occurred, so none is recorded.
	assert.Nil(t, op.Conversion)
}

func TestService_CreateTransfer_Failures(t *testing.T) {
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "200")
	toID := repo.addAccount(ownerID, "EUR", "0")

	svc := operation.NewService(repo)

	type testCase struct {
		name    string
		params  operation.CreateTransferParams
		wantErr error
	}

	tests := []testCase{
		{
			name:    "MissingRateAcrossCurrencies",
			params:  operation.CreateTransferParams{FromAccountID: fromID, ToAccountID: toID, Amount: dec("100")},
			wantErr: operation.ErrMissingExchangeRate,
		},
		{
			name:    "SameAccount",
			params:  operation.CreateTransferParams{FromAccountID: fromID, ToAccountID: fromID, Amount: dec("10")},
			wantErr: operation.ErrSameAccount,
		},
		{
			name:    "FromMissing",
			params:  operation.CreateTransferParams{FromAccountID: uuid.New(), ToAccountID: toID, Amount: dec("10")},
			wantErr: operation.ErrFromAccountNotFound,
		},
		{
			name:    "ToMissing",
			params:  operation.CreateTransferParams{FromAccountID: fromID, ToAccountID: uuid.New(), Amount: dec("10")},
			wantErr: operation.ErrToAccountNotFound,
		},
		{
			name:    "NonPositiveRate",
			params:  operation.CreateTransferParams{FromAccountID: fromID, ToAccountID: toID, Amount: dec("10"), ExchangeRate: decPtr("0")},
			wantErr: operation.ErrInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransfer(context.Background(), ownerID, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, "200", repo.balance(t, fromID))
			assert.Equal(t, "0", repo.balance(t, toID))
			assert.Empty(t, repo.operations)
		})
	}
}

func TestService_UpdateExpense_AmountIsDiffed(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "USD", "100")
	catID := repo.addCategory(category.KindExpense)

	svc := operation.NewService(repo)

	op, err := svc.CreateExpense(ctx, ownerID, operation.CreateParams{AccountID: accID, CategoryID: catID, Amount: dec("50")})
	require.NoError(t, err)
	require.Equal(t, "50", repo.balance(t, accID))

	// Lowering the amount credits back only the difference.
	_, err = svc.UpdateExpense(ctx, ownerID, op.ID, operation.UpdateParams{Amount: decPtr("30")})
	require.NoError(t, err)
	assert.Equal(t, "70", repo.balance(t, accID))

	// A second update lands on the same state a single update would have.
	updated, err := svc.UpdateExpense(ctx, ownerID, op.ID, operation.UpdateParams{Amount: decPtr("80")})
	require.NoError(t, err)
	assert.Equal(t, "20", repo.balance(t, accID))
	assert.Equal(t, "80", updated.Amount.Amount.String())
}

func TestService_UpdateIncome_AccountReassignment(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	oldAccID := repo.addAccount(ownerID, "USD", "0")
	newAccID := repo.addAccount(ownerID, "UAH", "1000")
	catID := repo.addCategory(category.KindIncome)

	svc := operation.NewService(repo)

	op, err := svc.CreateIncome(ctx, ownerID, operation.CreateParams{AccountID: oldAccID, CategoryID: catID, Amount: dec("100")})
	require.NoError(t, err)
	require.Equal(t, "100", repo.balance(t, oldAccID))

	updated, err := svc.UpdateIncome(ctx, ownerID, op.ID, operation.UpdateParams{
		AccountID: &newAccID,
		Amount:    decPtr("250"),
	})
	require.NoError(t, err)

	// Full old amount reversed on the old account, full new amount applied on
	// the new one, and the record carries the new amount in the new currency.
	assert.Equal(t, "0", repo.balance(t, oldAccID))
	assert.Equal(t, "1250", repo.balance(t, newAccID))
	assert.Equal(t, newAccID, *updated.ToAccountID)
	assert.Equal(t, "250", updated.Amount.Amount.String())
	assert.Equal(t, money.Currency("UAH"), updated.Amount.Currency)
}

func TestService_UpdateExpense_ValidationFailureLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "USD", "100")
	catID := repo.addCategory(category.KindExpense)

	svc := operation.NewService(repo)

	op, err := svc.CreateExpense(ctx, ownerID, operation.CreateParams{AccountID: accID, CategoryID: catID, Amount: dec("50")})
	require.NoError(t, err)

	t.Run("NewAccountMissing", func(t *testing.T) {
		missing := uuid.New()

		_, err := svc.UpdateExpense(ctx, ownerID, op.ID, operation.UpdateParams{AccountID: &missing, Amount: decPtr("10")})
		assert.ErrorIs(t, err, operation.ErrAccountNotFound)
		assert.Equal(t, "50", repo.balance(t, accID))
	})

	t.Run("NewCategoryMissing", func(t *testing.T) {
		missing := uuid.New()

		_, err := svc.UpdateExpense(ctx, ownerID, op.ID, operation.UpdateParams{CategoryID: &missing, Amount: decPtr("10")})
		assert.ErrorIs(t, err, operation.ErrCategoryNotFound)
		assert.Equal(t, "50", repo.balance(t, accID))

		persisted, err := repo.GetOperation(ctx, ownerID, op.ID, operation.KindExpense)
		require.NoError(t, err)
		assert.Equal(t, "50", persisted.Amount.Amount.String())
		assert.Equal(t, catID, *persisted.CategoryID)
	})
}

func TestService_UpdateTransfer_AmountOnly(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "200")
	toID := repo.addAccount(ownerID, "EUR", "0")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("100"),
		ExchangeRate:  decPtr("0.9"),
	})
	require.NoError(t, err)
	require.Equal(t, "100", repo.balance(t, fromID))
	require.Equal(t, "90", repo.balance(t, toID))

	t.Run("WithoutFreshRateFails", func(t *testing.T) {
		_, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{Amount: decPtr("50")})
		assert.ErrorIs(t, err, operation.ErrMissingExchangeRate)

		assert.Equal(t, "100", repo.balance(t, fromID))
		assert.Equal(t, "90", repo.balance(t, toID))
	})

	t.Run("WithFreshRate", func(t *testing.T) {
		updated, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{
			Amount:       decPtr("50"),
			ExchangeRate: decPtr("0.8"),
		})
		require.NoError(t, err)

		// Old effect fully reversed, new effect applied.
		assert.Equal(t, "150", repo.balance(t, fromID))
		assert.Equal(t, "40", repo.balance(t, toID))
		require.NotNil(t, updated.Conversion)
		assert.Equal(t, "40", updated.Conversion.Amount.Amount.String())
		assert.Equal(t, "0.8", updated.Conversion.Rate.String())
	})
}

func TestService_UpdateTransfer_SameCurrencyAmountOnly(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "100")
	toID := repo.addAccount(ownerID, "USD", "0")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("30"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{Amount: decPtr("45")})
	require.NoError(t, err)

	assert.Equal(t, "55", repo.balance(t, fromID))
	assert.Equal(t, "45", repo.balance(t, toID))
	assert.Nil(t, updated.Conversion)
}

func TestService_UpdateTransfer_Reassignment(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "100")
	toID := repo.addAccount(ownerID, "USD", "0")
	otherID := repo.addAccount(ownerID, "EUR", "10")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("30"),
	})
	require.NoError(t, err)
	require.Equal(t, "70", repo.balance(t, fromID))
	require.Equal(t, "30", repo.balance(t, toID))

	t.Run("NewEndpointMissing", func(t *testing.T) {
		missing := uuid.New()

		_, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{ToAccountID: &missing})
		assert.ErrorIs(t, err, operation.ErrToAccountNotFound)

		assert.Equal(t, "70", repo.balance(t, fromID))
		assert.Equal(t, "30", repo.balance(t, toID))
	})

	t.Run("CrossCurrencyEndpointNeedsRate", func(t *testing.T) {
		_, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{ToAccountID: &otherID})
		assert.ErrorIs(t, err, operation.ErrMissingExchangeRate)

		assert.Equal(t, "70", repo.balance(t, fromID))
		assert.Equal(t, "30", repo.balance(t, toID))
		assert.Equal(t, "10", repo.balance(t, otherID))
	})

	t.Run("EndpointMoved", func(t *testing.T) {
		updated, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{
			ToAccountID:  &otherID,
			ExchangeRate: decPtr("0.5"),
		})
		require.NoError(t, err)

		// Reversed on the old destination, applied converted on the new one.
		assert.Equal(t, "70", repo.balance(t, fromID))
		assert.Equal(t, "0", repo.balance(t, toID))
		assert.Equal(t, "25", repo.balance(t, otherID))
		assert.Equal(t, otherID, *updated.ToAccountID)
		require.NotNil(t, updated.Conversion)
		assert.Equal(t, "15", updated.Conversion.Amount.Amount.String())
	})

	t.Run("ReassignToSameAccount", func(t *testing.T) {
		_, err := svc.UpdateTransfer(ctx, ownerID, op.ID, operation.UpdateTransferParams{ToAccountID: &fromID})
		assert.ErrorIs(t, err, operation.ErrSameAccount)
	})
}

func TestService_Delete_Income(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "USD", "100")
	catID := repo.addCategory(category.KindIncome)

	svc := operation.NewService(repo)

	op, err := svc.CreateIncome(ctx, ownerID, operation.CreateParams{AccountID: accID, CategoryID: catID, Amount: dec("30")})
	require.NoError(t, err)
	require.Equal(t, "130", repo.balance(t, accID))

	require.NoError(t, svc.Delete(ctx, ownerID, op.ID, operation.KindIncome))

	assert.Equal(t, "100", repo.balance(t, accID))

	_, err = repo.GetOperation(ctx, ownerID, op.ID, operation.KindIncome)
	assert.ErrorIs(t, err, operation.ErrNotFound)
}

func TestService_Delete_Transfer_RestoresBothSides(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "200")
	toID := repo.addAccount(ownerID, "EUR", "50")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("100"),
		ExchangeRate:  decPtr("0.9"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ownerID, op.ID, operation.KindTransfer))

	// Round trip: delete(create(op)) leaves both balances exactly as before.
	assert.Equal(t, "200", repo.balance(t, fromID))
	assert.Equal(t, "50", repo.balance(t, toID))
}

func TestService_Delete_SkipsRemovedAccountSide(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	fromID := repo.addAccount(ownerID, "USD", "200")
	toID := repo.addAccount(ownerID, "USD", "0")

	svc := operation.NewService(repo)

	op, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        dec("100"),
	})
	require.NoError(t, err)

	// Destination account removed out from under the operation.
	delete(repo.accounts, toID)

	require.NoError(t, svc.Delete(ctx, ownerID, op.ID, operation.KindTransfer))

	// The surviving side is still reversed.
	assert.Equal(t, "200", repo.balance(t, fromID))
}

func TestService_Delete_KindMismatch(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "USD", "100")
	catID := repo.addCategory(category.KindExpense)

	svc := operation.NewService(repo)

	op, err := svc.CreateExpense(ctx, ownerID, operation.CreateParams{AccountID: accID, CategoryID: catID, Amount: dec("10")})
	require.NoError(t, err)

	err = svc.Delete(ctx, ownerID, op.ID, operation.KindIncome)
	assert.ErrorIs(t, err, operation.ErrNotFound)
	assert.Equal(t, "90", repo.balance(t, accID))
}

func TestService_BalanceMatchesOperationHistory(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	repo := newFakeRepo()
	accID := repo.addAccount(ownerID, "USD", "0")
	otherID := repo.addAccount(ownerID, "USD", "1000")
	incomeCat := repo.addCategory(category.KindIncome)
	expenseCat := repo.addCategory(category.KindExpense)

	svc := operation.NewService(repo)

	inc, err := svc.CreateIncome(ctx, ownerID, operation.CreateParams{AccountID: accID, CategoryID: incomeCat, Amount: dec("500")})
	require.NoError(t, err)

	_, err = svc.CreateExpense(ctx, ownerID, operation.CreateParams{AccountID: accID, CategoryID: expenseCat, Amount: dec("120.75")})
	require.NoError(t, err)

	tr, err := svc.CreateTransfer(ctx, ownerID, operation.CreateTransferParams{FromAccountID: otherID, ToAccountID: accID, Amount: dec("79.25")})
	require.NoError(t, err)

	_, err = svc.UpdateIncome(ctx, ownerID, inc.ID, operation.UpdateParams{Amount: decPtr("400")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ownerID, tr.ID, operation.KindTransfer))

	// 400 income - 120.75 expense, transfer fully reversed.
	assert.Equal(t, "279.25", repo.balance(t, accID))
	assert.Equal(t, "1000", repo.balance(t, otherID))
}
