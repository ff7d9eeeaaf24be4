package token_test

import (
	"context"
	"sync"

	"github.com/Mohsinsiddi/tokenapp/internal/provider"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// fakeProvider is an in-memory wallet. Zero value: no accounts, every call
// answers with empty data.
type fakeProvider struct {
	mu sync.Mutex

	accounts   []common.Address
	accountErr error
	callOut    []byte
	callErr    error
	sendHash   common.Hash
	sendErr    error
	receipts   []*types.Receipt // returned in order, one per lookup
	receiptErr error

	calls       []ethereum.CallMsg
	sent        []provider.TxRequest
	lookups     int
	closed      bool
	requested   int
	accountList int
}

var _ provider.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) RequestAccounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested++
	return f.accounts, f.accountErr
}

func (f *fakeProvider) Accounts(context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountList++
	return f.accounts, f.accountErr
}

func (f *fakeProvider) Call(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	return f.callOut, f.callErr
}

func (f *fakeProvider) SendTransaction(_ context.Context, req provider.TxRequest) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return f.sendHash, f.sendErr
}

func (f *fakeProvider) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.receiptErr != nil {
		err := f.receiptErr
		f.receiptErr = nil
		return nil, err
	}
	if len(f.receipts) == 0 {
		return nil, nil
	}
	r := f.receipts[0]
	f.receipts = f.receipts[1:]
	return r, nil
}

func (f *fakeProvider) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
