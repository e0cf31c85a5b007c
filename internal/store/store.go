package store

import (
	"github.com/shieldtip/shieldtip-backend/internal/store/tiptransaction"
)

type Store struct {
	TipTransaction tiptransaction.IStore
}

func New() *Store {
	return &Store{
		TipTransaction: tiptransaction.New(),
	}
}
