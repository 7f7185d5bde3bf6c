package resolve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/dataservice"
	"github.com/MrJamesThe3rd/invoicer/internal/resolve"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func salesTx() *transaction.Transaction {
	return &transaction.Transaction{
		ID:   "tx-100",
		Type: transaction.TypeSales,
		Counterparty: transaction.Embed("p-1", &transaction.Counterparty{
			ID:    "p-1",
			Name:  "Acme",
			Email: "billing@acme.test",
			Phone: "+351 912 345 678",
		}),
		Company: transaction.RefTo[transaction.Company]("c-1"),
		Bank:    transaction.RefTo[transaction.BankAccount]("b-1"),
	}
}

func TestService_Resolve(t *testing.T) {
	type testCase struct {
		name      string
		tx        func() *transaction.Transaction
		setupMock func(m *resolve.MockSource)
		check     func(t *testing.T, got *resolve.Entities)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "BankNotFoundDegrades",
			tx:   salesTx,
			setupMock: func(m *resolve.MockSource) {
				m.EXPECT().GetCompany(gomock.Any(), "c-1").Return(&transaction.Company{
					ID:     "c-1",
					Name:   "Finny Lda",
					Client: transaction.RefTo[transaction.Client]("cl-1"),
				}, nil)
				m.EXPECT().GetClient(gomock.Any(), "cl-1").Return(&transaction.Client{ID: "cl-1", Name: "Reseller"}, nil)
				m.EXPECT().GetBankAccount(gomock.Any(), "b-1").Return(nil, dataservice.ErrNotFound)
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Equal(t, "Acme", got.Counterparty.Name)
				assert.Equal(t, "Finny Lda", got.Company.Name)
				assert.Equal(t, "Reseller", got.OwnerClient.Name)
				assert.Nil(t, got.Bank)
			},
		},
		{
			name: "CounterpartyFetchedWhenEmailMissing",
			tx: func() *transaction.Transaction {
				tx := salesTx()
				tx.Counterparty = transaction.Embed("p-1", &transaction.Counterparty{ID: "p-1", Name: "Acme", Phone: "+351900000000"})
				tx.Company = transaction.Ref[transaction.Company]{}
				tx.Bank = transaction.Ref[transaction.BankAccount]{}

				return tx
			},
			setupMock: func(m *resolve.MockSource) {
				m.EXPECT().GetParty(gomock.Any(), "p-1").Return(&transaction.Counterparty{
					ID:    "p-1",
					Name:  "Acme Ltd",
					Email: "ap@acme.test",
				}, nil)
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Equal(t, "Acme Ltd", got.Counterparty.Name)
				assert.Equal(t, "ap@acme.test", got.Counterparty.Email)
				assert.Equal(t, "+351900000000", got.Counterparty.Phone)
				assert.Equal(t, transaction.KindCustomer, got.Counterparty.Kind)
				assert.Nil(t, got.Company)
				assert.Nil(t, got.OwnerClient)
			},
		},
		{
			name: "CounterpartyFetchedWhenPhoneMissing",
			tx: func() *transaction.Transaction {
				tx := salesTx()
				tx.Counterparty = transaction.Embed("p-1", &transaction.Counterparty{ID: "p-1", Name: "Acme", Email: "billing@acme.test"})
				tx.Company = transaction.Ref[transaction.Company]{}
				tx.Bank = transaction.Ref[transaction.BankAccount]{}

				return tx
			},
			setupMock: func(m *resolve.MockSource) {
				m.EXPECT().GetParty(gomock.Any(), "p-1").Return(&transaction.Counterparty{
					ID:    "p-1",
					Name:  "Acme",
					Phone: "+351 912 345 678",
				}, nil)
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Equal(t, "+351 912 345 678", got.Counterparty.Phone)
				assert.Equal(t, "billing@acme.test", got.Counterparty.Email)
			},
		},
		{
			name: "CompleteCounterpartyNotRefetched",
			tx: func() *transaction.Transaction {
				tx := salesTx()
				tx.Company = transaction.Ref[transaction.Company]{}
				tx.Bank = transaction.Ref[transaction.BankAccount]{}

				return tx
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Equal(t, "billing@acme.test", got.Counterparty.Email)
				assert.Equal(t, "+351 912 345 678", got.Counterparty.Phone)
			},
		},
		{
			name: "PartialCounterpartyKeptWhenFetchFails",
			tx: func() *transaction.Transaction {
				tx := salesTx()
				tx.Counterparty = transaction.Embed("p-1", &transaction.Counterparty{ID: "p-1", Name: "Acme"})
				tx.Company = transaction.Ref[transaction.Company]{}
				tx.Bank = transaction.Ref[transaction.BankAccount]{}

				return tx
			},
			setupMock: func(m *resolve.MockSource) {
				m.EXPECT().GetParty(gomock.Any(), "p-1").Return(nil, errors.New("timeout"))
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Equal(t, "Acme", got.Counterparty.Name)
				assert.Empty(t, got.Counterparty.Email)
			},
		},
		{
			name: "RequiredCounterpartyMissing",
			tx: func() *transaction.Transaction {
				tx := salesTx()
				tx.Counterparty = transaction.RefTo[transaction.Counterparty]("p-9")
				tx.Company = transaction.Ref[transaction.Company]{}
				tx.Bank = transaction.Ref[transaction.BankAccount]{}

				return tx
			},
			setupMock: func(m *resolve.MockSource) {
				m.EXPECT().GetParty(gomock.Any(), "p-9").Return(nil, dataservice.ErrNotFound)
			},
			wantErr: resolve.ErrCounterpartyMissing,
		},
		{
			name: "VendorNotRequiredForPurchases",
			tx: func() *transaction.Transaction {
				return &transaction.Transaction{
					ID:           "tx-200",
					Type:         transaction.TypePurchases,
					Counterparty: transaction.RefTo[transaction.Counterparty]("v-1"),
				}
			},
			setupMock: func(m *resolve.MockSource) {
				m.EXPECT().GetVendor(gomock.Any(), "v-1").Return(nil, errors.New("unavailable"))
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Nil(t, got.Counterparty)
			},
		},
		{
			name: "EmbeddedOwnerClientNotRefetched",
			tx: func() *transaction.Transaction {
				tx := salesTx()
				tx.Company = transaction.Embed("c-1", &transaction.Company{
					ID:     "c-1",
					Name:   "Finny Lda",
					Client: transaction.Embed("cl-1", &transaction.Client{ID: "cl-1", Name: "Reseller"}),
				})
				tx.Bank = transaction.Embed("b-1", &transaction.BankAccount{ID: "b-1", IBAN: "PT50000201231234567890154"})

				return tx
			},
			check: func(t *testing.T, got *resolve.Entities) {
				assert.Equal(t, "Reseller", got.OwnerClient.Name)
				assert.Equal(t, "PT50000201231234567890154", got.Bank.IBAN)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			source := resolve.NewMockSource(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(source)
			}

			got, err := resolve.NewService(source).Resolve(context.Background(), tt.tx())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Resolve_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := resolve.NewMockSource(ctrl)
	source.EXPECT().GetCompany(gomock.Any(), "c-1").Return(&transaction.Company{ID: "c-1", Name: "Finny Lda"}, nil).Times(2)
	source.EXPECT().GetBankAccount(gomock.Any(), "b-1").Return(&transaction.BankAccount{ID: "b-1", IBAN: "DE89370400440532013000"}, nil).Times(2)
	source.EXPECT().GetProduct(gomock.Any(), "prod-1").Return(&transaction.Item{ID: "prod-1", Name: "Widget"}, nil).Times(2)

	tx := salesTx()
	tx.Lines = []transaction.Line{{ProductID: "prod-1"}, {ProductID: "prod-1"}}

	svc := resolve.NewService(source)

	first, err := svc.Resolve(context.Background(), tx)
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), tx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Widget", first.Items.Name(tx.Lines[0]))
	assert.False(t, tx.Company.Embedded(), "resolver must not modify the transaction")
}

func TestItemNames_Name(t *testing.T) {
	names := resolve.ItemNames{"product:p1": "Widget", "service:s1": "Setup"}

	assert.Equal(t, "Widget", names.Name(transaction.Line{ProductID: "p1", Name: "Old"}))
	assert.Equal(t, "Setup", names.Name(transaction.Line{ServiceID: "s1"}))
	assert.Equal(t, "Custom", names.Name(transaction.Line{ProductID: "p2", Name: "Custom"}))
	assert.Equal(t, "p2", names.Name(transaction.Line{ProductID: "p2"}))
	assert.Equal(t, "Item", names.Name(transaction.Line{}))

	var empty resolve.ItemNames
	assert.Equal(t, "x", empty.Name(transaction.Line{Name: "x"}))
}
