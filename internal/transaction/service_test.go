package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func TestService_List(t *testing.T) {
	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantIDs   []string
		wantErr   bool
	}

	older := transaction.NewDate(2024, 1, 10)
	newer := transaction.NewDate(2024, 2, 10)

	tests := []testCase{
		{
			name: "SortedNewestFirst",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return([]*transaction.Transaction{
						{ID: "a", Date: older},
						{ID: "b", Date: newer},
					}, nil)
			},
			wantIDs: []string{"b", "a"},
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			ids := make([]string, len(got))
			for i, tx := range got {
				ids[i] = tx.ID
			}

			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestService_ListInvoiceable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filter := transaction.ListFilter{StartDate: &start}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), filter).Return([]*transaction.Transaction{
		{ID: "s", Type: transaction.TypeSales},
		{ID: "r", Type: transaction.TypeReceipt},
		{ID: "p", Type: transaction.TypeProforma},
		{ID: "j", Type: transaction.TypeJournal},
	}, nil)

	got, err := transaction.NewService(repo).ListInvoiceable(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s", got[0].ID)
	assert.Equal(t, "p", got[1].ID)
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(&transaction.Transaction{ID: "tx-1"}, nil)

	svc := transaction.NewService(repo)

	got, err := svc.Get(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "tx-1", got.ID)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}
