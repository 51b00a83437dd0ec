package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chronodrachma/ethamount/pkg/core/types"
	"github.com/dgraph-io/badger/v4"
)

var (
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrZeroAddress              = errors.New("zero address cannot hold a balance")
	ErrLedgerAlreadyInitialized = errors.New("ledger is already initialized with genesis")
)

// Store defines the interface for persistent balance storage.
type Store interface {
	Balance(addr types.Address) (types.Amount, error)
	TotalSupply() (types.Amount, error)
	Credit(addr types.Address, amount types.Amount) error
	Debit(addr types.Address, amount types.Amount) error
	Transfer(from, to types.Address, amount, fee types.Amount) error
	Close() error
}

// BadgerStore implements Store using BadgerDB.
type BadgerStore struct {
	db *badger.DB
	mu sync.Mutex // serializes read-modify-write updates
}

// NewBadgerStore creates or opens a BadgerDB store at the given path.
// If path is empty, it opens an in-memory store (for testing).
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	return &BadgerStore{
		db: db,
	}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Keys:
// Balance: "balance:<0x addr>" -> 32-byte big-endian wei
// Supply:  "ledger:supply"     -> 32-byte big-endian wei
// Genesis: "ledger:genesis"    -> empty marker, present once genesis has run

var (
	supplyKey  = []byte("ledger:supply")
	genesisKey = []byte("ledger:genesis")
)

func balanceKey(addr types.Address) []byte {
	return []byte("balance:" + addr.Hex())
}

// Balance returns the balance of addr. Unknown accounts hold zero.
func (s *BadgerStore) Balance(addr types.Address) (types.Amount, error) {
	var bal types.Amount
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		bal, err = getAmount(txn, balanceKey(addr))
		return err
	})
	return bal, err
}

// TotalSupply returns the sum of all balances.
func (s *BadgerStore) TotalSupply() (types.Amount, error) {
	var supply types.Amount
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		supply, err = getAmount(txn, supplyKey)
		return err
	})
	return supply, err
}

// Credit mints amount into addr. An overflow of either the balance or the
// supply aborts the write.
func (s *BadgerStore) Credit(addr types.Address, amount types.Amount) error {
	if addr.IsZero() {
		return ErrZeroAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := addTo(txn, balanceKey(addr), amount); err != nil {
			return fmt.Errorf("credit %s: %w", addr, err)
		}
		if err := addTo(txn, supplyKey, amount); err != nil {
			return fmt.Errorf("credit supply: %w", err)
		}
		return nil
	})
}

// Debit burns amount from addr.
func (s *BadgerStore) Debit(addr types.Address, amount types.Amount) error {
	if addr.IsZero() {
		return ErrZeroAddress
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := subFrom(txn, balanceKey(addr), amount); err != nil {
			return fmt.Errorf("debit %s: %w", addr, err)
		}
		if err := subFrom(txn, supplyKey, amount); err != nil {
			return fmt.Errorf("debit supply: %w", err)
		}
		return nil
	})
}

// Transfer moves amount from one account to another and burns fee from the
// sender. The sender must cover amount+fee. All updates commit together.
func (s *BadgerStore) Transfer(from, to types.Address, amount, fee types.Amount) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAddress
	}
	total, err := amount.Add(fee)
	if err != nil {
		return fmt.Errorf("transfer total: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		if err := subFrom(txn, balanceKey(from), total); err != nil {
			return fmt.Errorf("transfer from %s: %w", from, err)
		}
		if err := addTo(txn, balanceKey(to), amount); err != nil {
			return fmt.Errorf("transfer to %s: %w", to, err)
		}
		if fee.IsZero() {
			return nil
		}
		if err := subFrom(txn, supplyKey, fee); err != nil {
			return fmt.Errorf("burn fee: %w", err)
		}
		return nil
	})
}

// Genesis credits every allocation in a single transaction. It runs at most
// once per ledger, even when the allocations are empty or the supply has since
// been burned.
func (s *BadgerStore) Genesis(allocs map[types.Address]types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(genesisKey)
		if err == nil {
			return ErrLedgerAlreadyInitialized
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(genesisKey, []byte{}); err != nil {
			return err
		}
		for addr, amount := range allocs {
			if addr.IsZero() {
				return ErrZeroAddress
			}
			if err := addTo(txn, balanceKey(addr), amount); err != nil {
				return fmt.Errorf("genesis %s: %w", addr, err)
			}
			if err := addTo(txn, supplyKey, amount); err != nil {
				return fmt.Errorf("genesis supply: %w", err)
			}
		}
		return nil
	})
}

func getAmount(txn *badger.Txn, key []byte) (types.Amount, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return types.Zero, nil
		}
		return types.Zero, err
	}

	var amount types.Amount
	err = item.Value(func(val []byte) error {
		var err error
		amount, err = types.AmountFromBytes(val)
		return err
	})
	return amount, err
}

func addTo(txn *badger.Txn, key []byte, amount types.Amount) error {
	cur, err := getAmount(txn, key)
	if err != nil {
		return err
	}
	next, err := cur.Add(amount)
	if err != nil {
		return err
	}
	return txn.Set(key, next.Bytes())
}

func subFrom(txn *badger.Txn, key []byte, amount types.Amount) error {
	cur, err := getAmount(txn, key)
	if err != nil {
		return err
	}
	next, err := cur.Sub(amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}
	return txn.Set(key, next.Bytes())
}
